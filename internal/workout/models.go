package workout

import (
	"time"

	"backend-pacetrail/internal/activity"
	"backend-pacetrail/internal/shared/geo"
)

// State of a live session. Absence of a session is the idle state.
type State string

const (
	StateActive  State = "active"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Stats is recomputed wholesale from the trajectory and the timers on every
// update; it is never patched incrementally. Degenerate inputs (no points,
// zero distance, zero elapsed time) report 0, never NaN or Inf.
type Stats struct {
	DistanceM           float64 `json:"distance_m"`
	DurationSec         float64 `json:"duration_sec"`
	ActiveDurationSec   float64 `json:"active_duration_sec"`
	CurrentPaceSecPerKm float64 `json:"current_pace_sec_per_km"`
	AveragePaceSecPerKm float64 `json:"average_pace_sec_per_km"`
	CurrentSpeedMps     float64 `json:"current_speed_mps"`
	MaxSpeedMps         float64 `json:"max_speed_mps"`
	Calories            *int    `json:"calories,omitempty"`
}

// Session is the mutable aggregate of one live workout, owned exclusively
// by its Manager.
type Session struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Type           activity.Type `json:"type"`
	State          State         `json:"state"`
	StartTime      time.Time     `json:"start_time"`
	PausedTime     time.Time     `json:"paused_time,omitempty"`
	ResumedTime    time.Time     `json:"resumed_time,omitempty"`
	EndTime        time.Time     `json:"end_time,omitempty"`
	TotalPausedSec float64       `json:"total_paused_sec"`
	Points         []geo.Point   `json:"gps_points"`
	Stats          Stats         `json:"stats"`
}

// Record is the immutable snapshot persisted when a workout stops.
// DurationSec is active duration: wall clock minus paused time.
type Record struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Type            activity.Type `json:"type"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	DistanceM       float64       `json:"distance_m"`
	DurationSec     float64       `json:"duration_sec"`
	AvgPaceSecPerKm float64       `json:"avg_pace_sec_per_km"`
	MaxSpeedMps     float64       `json:"max_speed_mps"`
	Calories        *int          `json:"calories,omitempty"`
	Points          []geo.Point   `json:"gps_points,omitempty"`
	Name            string        `json:"name,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}
