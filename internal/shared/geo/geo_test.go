package geo

import (
	"testing"
	"time"
)

func TestHaversineIdentity(t *testing.T) {
	points := []Point{
		{Lat: 0, Lng: 0},
		{Lat: -6.2, Lng: 106.816},
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: 89.9, Lng: 179.9},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Fatalf("distance to self should be 0, got %v", d)
		}
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Point{Lat: 40.7128, Lng: -74.0060}
	b := Point{Lat: 34.0522, Lng: -118.2437}
	if Distance(a, b) != Distance(b, a) {
		t.Fatalf("distance is not symmetric")
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	// New York to Los Angeles, roughly 3,940 km
	nyLA := HaversineM(40.7128, -74.0060, 34.0522, -118.2437)
	if nyLA < 3_900_000 || nyLA > 4_000_000 {
		t.Fatalf("NY-LA distance out of range: %v", nyLA)
	}

	// pole to pole is half the circumference
	poles := HaversineM(90, 0, -90, 0)
	if poles < 20_000_000 || poles > 20_100_000 {
		t.Fatalf("pole-to-pole distance out of range: %v", poles)
	}
}

func TestPathDistance(t *testing.T) {
	if d := PathDistance(nil); d != 0 {
		t.Fatalf("empty path: %v", d)
	}
	if d := PathDistance([]Point{{Lat: 1, Lng: 1}}); d != 0 {
		t.Fatalf("single point path: %v", d)
	}

	p0 := Point{Lat: -6.2, Lng: 106.816}
	p1 := Point{Lat: -6.25, Lng: 106.85}
	p2 := Point{Lat: -6.3, Lng: 106.9}
	path := []Point{p0, p1, p2}

	want := Distance(p0, p1) + Distance(p1, p2)
	got := PathDistance(path)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("path distance %v, want %v", got, want)
	}
}

func TestSpeedZeroTimeDelta(t *testing.T) {
	now := time.Now()
	a := Point{Lat: 0, Lng: 0, Timestamp: now}
	b := Point{Lat: 1, Lng: 1, Timestamp: now}
	if s := SpeedMps(a, b); s != 0 {
		t.Fatalf("expected 0 speed for zero time delta, got %v", s)
	}

	// out of order timestamps guard the same way
	b.Timestamp = now.Add(-time.Second)
	if s := SpeedMps(a, b); s != 0 {
		t.Fatalf("expected 0 speed for negative time delta, got %v", s)
	}
}

func TestSpeed(t *testing.T) {
	now := time.Now()
	a := Point{Lat: 0, Lng: 0, Timestamp: now}
	b := Point{Lat: 0, Lng: 0.001, Timestamp: now.Add(10 * time.Second)}

	// 0.001 deg longitude at the equator is about 111 m
	s := SpeedMps(a, b)
	if s < 10 || s > 12.5 {
		t.Fatalf("unexpected speed: %v", s)
	}
}
