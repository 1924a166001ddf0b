package gpsfilter

import "backend-pacetrail/internal/shared/geo"

const (
	defaultProcessNoise     = 0.01
	defaultMeasurementNoise = 0.1
)

// Kalman is a scalar recursive estimator that trades process noise against
// measurement noise to smooth a jittery signal. One instance filters one
// channel (latitude or longitude).
type Kalman struct {
	q float64 // process noise
	r float64 // measurement noise
	x float64 // current estimate
	p float64 // error covariance
}

func NewKalman(q, r float64) *Kalman {
	if q <= 0 {
		q = defaultProcessNoise
	}
	if r <= 0 {
		r = defaultMeasurementNoise
	}
	return &Kalman{q: q, r: r}
}

// Reset seeds the estimate and declares full confidence in the seed.
func (k *Kalman) Reset(value float64) {
	k.x = value
	k.p = 0
}

// Update runs one predict/update step and returns the filtered value.
func (k *Kalman) Update(measurement float64) float64 {
	k.p += k.q
	gain := k.p / (k.p + k.r)
	k.x += gain * (measurement - k.x)
	k.p = (1 - gain) * k.p
	return k.x
}

// PathSmoother filters the latitude and longitude channels of a trajectory
// independently. The first point seeds the filters and passes through.
type PathSmoother struct {
	lat    *Kalman
	lng    *Kalman
	seeded bool
}

func NewPathSmoother() *PathSmoother {
	return &PathSmoother{
		lat: NewKalman(defaultProcessNoise, defaultMeasurementNoise),
		lng: NewKalman(defaultProcessNoise, defaultMeasurementNoise),
	}
}

func (s *PathSmoother) Reset() {
	s.seeded = false
}

// Smooth returns the point with filtered coordinates. Timestamps, accuracy
// and the rest of the fix are left untouched.
func (s *PathSmoother) Smooth(p geo.Point) geo.Point {
	if !s.seeded {
		s.lat.Reset(p.Lat)
		s.lng.Reset(p.Lng)
		s.seeded = true
		return p
	}
	p.Lat = s.lat.Update(p.Lat)
	p.Lng = s.lng.Update(p.Lng)
	return p
}

// SmoothPath filters a whole trajectory in order.
func SmoothPath(points []geo.Point) []geo.Point {
	if len(points) == 0 {
		return points
	}
	smoother := NewPathSmoother()
	out := make([]geo.Point, 0, len(points))
	for _, p := range points {
		out = append(out, smoother.Smooth(p))
	}
	return out
}
