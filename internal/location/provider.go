package location

import (
	"context"
	"time"

	"backend-pacetrail/internal/shared/geo"
)

// Options controls how a tracking stream is requested.
type Options struct {
	UpdateInterval     time.Duration
	DistanceFilterM    float64
	HighAccuracy       bool
	BackgroundTracking bool
	UseNoiseFilter     bool
}

// Provider streams GPS fixes to subscribers. Implementations decide where
// the fixes come from; the workout manager only drives the lifecycle.
type Provider interface {
	StartTracking(ctx context.Context, opts Options) error

	// StopTracking is idempotent.
	StopTracking(ctx context.Context) error

	// Subscribe registers a delivery callback and returns its unsubscribe
	// handle. Multiple subscribers may coexist.
	Subscribe(fn func(geo.Point)) (unsubscribe func())

	// TotalDistance reports the cumulative meters over a trajectory.
	TotalDistance(points []geo.Point) float64
}
