package geo

import (
	"math"
	"time"
)

const earthRadiusM = 6371000.0

// Point is a single GPS fix. A trajectory is an ordered slice of points
// where timestamps never decrease.
type Point struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Timestamp  time.Time `json:"timestamp"`
	AccuracyM  float64   `json:"accuracy_m"`
	AltitudeM  float64   `json:"altitude_m,omitempty"`
	SpeedMps   float64   `json:"speed_mps,omitempty"`
	HeadingDeg float64   `json:"heading_deg,omitempty"`
}

func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineM returns the great-circle distance in meters between two
// latitude/longitude pairs.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := DegreesToRadians(lat2 - lat1)
	dLng := DegreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(DegreesToRadians(lat1))*math.Cos(DegreesToRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

func Distance(a, b Point) float64 {
	return HaversineM(a.Lat, a.Lng, b.Lat, b.Lng)
}

// PathDistance sums consecutive segment distances over a trajectory.
func PathDistance(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// SpeedMps returns the average speed between two timestamped points.
// A non-positive time delta yields 0 rather than a division error.
func SpeedMps(a, b Point) float64 {
	dt := b.Timestamp.Sub(a.Timestamp).Seconds()
	if dt <= 0 {
		return 0
	}
	return Distance(a, b) / dt
}
