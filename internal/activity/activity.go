package activity

import "time"

// Type is the closed set of supported workout activities.
type Type string

const (
	Walk Type = "walk"
	Run  Type = "run"
	Bike Type = "bike"
)

// Config holds the static per-activity tuning: how the GPS stream is
// requested and which samples count as plausible.
type Config struct {
	UpdateInterval        time.Duration
	DistanceFilterM       float64
	MinSpeedMps           float64
	MaxReasonableSpeedMps float64
	CaloriesPerKm         float64
	HighAccuracy          bool
}

var configs = map[Type]Config{
	Walk: {
		UpdateInterval:        5 * time.Second,
		DistanceFilterM:       10,
		MinSpeedMps:           0.3,
		MaxReasonableSpeedMps: 4.0, // ~14 km/h, faster than any walk
		CaloriesPerKm:         50,
		HighAccuracy:          false,
	},
	Run: {
		UpdateInterval:        3 * time.Second,
		DistanceFilterM:       5,
		MinSpeedMps:           0.5,
		MaxReasonableSpeedMps: 12.0, // ~43 km/h, above world-record sprinting
		CaloriesPerKm:         65,
		HighAccuracy:          true,
	},
	Bike: {
		UpdateInterval:        2 * time.Second,
		DistanceFilterM:       10,
		MinSpeedMps:           1.0,
		MaxReasonableSpeedMps: 30.0, // ~108 km/h, downhill territory
		CaloriesPerKm:         30,
		HighAccuracy:          true,
	},
}

func (t Type) Valid() bool {
	_, ok := configs[t]
	return ok
}

// ConfigFor looks up the tuning table. Callers validate the type first; an
// unknown type returns the zero Config.
func ConfigFor(t Type) Config {
	return configs[t]
}
