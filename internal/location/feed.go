package location

import (
	"context"
	"sync"

	"backend-pacetrail/internal/shared/geo"
	"backend-pacetrail/internal/shared/gpsfilter"
)

// Feed is a push-based Provider fed from outside, typically by the HTTP
// ingest route. While tracking is stopped, published fixes are dropped.
type Feed struct {
	mu       sync.Mutex
	tracking bool
	opts     Options
	smoother *gpsfilter.PathSmoother
	last     *geo.Point
	subs     map[int]func(geo.Point)
	nextSub  int
}

func NewFeed() *Feed {
	return &Feed{
		smoother: gpsfilter.NewPathSmoother(),
		subs:     map[int]func(geo.Point){},
	}
}

func (f *Feed) StartTracking(_ context.Context, opts Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracking = true
	f.opts = opts
	f.smoother.Reset()
	f.last = nil
	return nil
}

func (f *Feed) StopTracking(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracking = false
	return nil
}

func (f *Feed) Subscribe(fn func(geo.Point)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *Feed) TotalDistance(points []geo.Point) float64 {
	return geo.PathDistance(points)
}

// Publish hands a fix to the feed. Fixes are delivered to subscribers only
// while tracking is active; the distance filter suppresses fixes closer to
// the previous delivery than the configured threshold, and the noise filter
// smooths coordinates when the stream was started with it enabled.
func (f *Feed) Publish(p geo.Point) {
	f.mu.Lock()
	if !f.tracking {
		f.mu.Unlock()
		return
	}

	if f.last != nil && f.opts.DistanceFilterM > 0 {
		if geo.Distance(*f.last, p) < f.opts.DistanceFilterM {
			f.mu.Unlock()
			return
		}
	}

	if f.opts.UseNoiseFilter {
		p = f.smoother.Smooth(p)
	}
	f.last = &p

	fns := make([]func(geo.Point), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}
