package gpsfilter

import (
	"math"

	"backend-pacetrail/internal/shared/geo"
)

// meters per degree of latitude, close enough for the planar approximation
const metersPerDegree = 111320.0

// Simplify reduces a trajectory with the Douglas-Peucker algorithm.
// epsilonM is the perpendicular-distance tolerance in meters; larger values
// drop more points. Paths of two points or fewer are returned unchanged.
//
// Perpendicular distances use a locally-flattened equirectangular projection
// (longitude scaled by the cosine of the chord start latitude). That is only
// accurate for nearby points, which workout trajectories are.
func Simplify(points []geo.Point, epsilonM float64) []geo.Point {
	if len(points) <= 2 {
		return points
	}

	maxDist := 0.0
	maxIdx := 0
	first := points[0]
	last := points[len(points)-1]

	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistanceM(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilonM {
		return []geo.Point{first, last}
	}

	left := Simplify(points[:maxIdx+1], epsilonM)
	right := Simplify(points[maxIdx:], epsilonM)

	// left may alias the input, so the join goes into a fresh slice
	out := make([]geo.Point, 0, len(left)-1+len(right))
	out = append(out, left[:len(left)-1]...)
	return append(out, right...)
}

// perpendicularDistanceM is the planar distance in meters from p to the line
// through a and b.
func perpendicularDistanceM(p, a, b geo.Point) float64 {
	cosLat := math.Cos(geo.DegreesToRadians(a.Lat))

	ax := a.Lng * cosLat * metersPerDegree
	ay := a.Lat * metersPerDegree
	bx := b.Lng * cosLat * metersPerDegree
	by := b.Lat * metersPerDegree
	px := p.Lng * cosLat * metersPerDegree
	py := p.Lat * metersPerDegree

	dx := bx - ax
	dy := by - ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	return math.Abs((px-ax)*dy-(py-ay)*dx) / math.Hypot(dx, dy)
}
