package location

import (
	"context"
	"testing"
	"time"

	"backend-pacetrail/internal/shared/geo"
)

func TestFeedDropsWhileStopped(t *testing.T) {
	feed := NewFeed()

	var got []geo.Point
	unsubscribe := feed.Subscribe(func(p geo.Point) { got = append(got, p) })
	defer unsubscribe()

	feed.Publish(geo.Point{Lat: 1, Lng: 1, Timestamp: time.Now()})
	if len(got) != 0 {
		t.Fatalf("expected drop while stopped, got %d points", len(got))
	}

	if err := feed.StartTracking(context.Background(), Options{}); err != nil {
		t.Fatalf("start tracking: %v", err)
	}
	feed.Publish(geo.Point{Lat: 1, Lng: 1, Timestamp: time.Now()})
	if len(got) != 1 {
		t.Fatalf("expected delivery while tracking, got %d points", len(got))
	}

	if err := feed.StopTracking(context.Background()); err != nil {
		t.Fatalf("stop tracking: %v", err)
	}
	feed.Publish(geo.Point{Lat: 1, Lng: 1.1, Timestamp: time.Now()})
	if len(got) != 1 {
		t.Fatalf("expected drop after stop, got %d points", len(got))
	}
}

func TestFeedDistanceFilter(t *testing.T) {
	feed := NewFeed()
	var got []geo.Point
	defer feed.Subscribe(func(p geo.Point) { got = append(got, p) })()

	_ = feed.StartTracking(context.Background(), Options{DistanceFilterM: 50})

	base := time.Now()
	feed.Publish(geo.Point{Lat: 0, Lng: 0, Timestamp: base})
	// ~11 m east, below the 50 m filter
	feed.Publish(geo.Point{Lat: 0, Lng: 0.0001, Timestamp: base.Add(time.Second)})
	// ~111 m east of the first delivery
	feed.Publish(geo.Point{Lat: 0, Lng: 0.001, Timestamp: base.Add(2 * time.Second)})

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[1].Lng != 0.001 {
		t.Fatalf("wrong point passed the distance filter: %+v", got[1])
	}
}

func TestFeedNoiseFilter(t *testing.T) {
	feed := NewFeed()
	var got []geo.Point
	defer feed.Subscribe(func(p geo.Point) { got = append(got, p) })()

	_ = feed.StartTracking(context.Background(), Options{UseNoiseFilter: true})

	base := time.Now()
	feed.Publish(geo.Point{Lat: 10, Lng: 20, Timestamp: base})
	feed.Publish(geo.Point{Lat: 10.001, Lng: 20, Timestamp: base.Add(time.Second)})

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0].Lat != 10 {
		t.Fatalf("first point must pass through unfiltered")
	}
	if got[1].Lat <= 10 || got[1].Lat >= 10.001 {
		t.Fatalf("second point should be pulled toward the seed, got %v", got[1].Lat)
	}
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := NewFeed()
	_ = feed.StartTracking(context.Background(), Options{})

	count := 0
	unsubscribe := feed.Subscribe(func(geo.Point) { count++ })

	feed.Publish(geo.Point{Lat: 1, Lng: 1, Timestamp: time.Now()})
	unsubscribe()
	feed.Publish(geo.Point{Lat: 1, Lng: 1.01, Timestamp: time.Now()})

	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
}

func TestFeedRestartResetsState(t *testing.T) {
	feed := NewFeed()
	var got []geo.Point
	defer feed.Subscribe(func(p geo.Point) { got = append(got, p) })()

	_ = feed.StartTracking(context.Background(), Options{DistanceFilterM: 50})
	feed.Publish(geo.Point{Lat: 0, Lng: 0, Timestamp: time.Now()})
	_ = feed.StopTracking(context.Background())

	// a restart must not filter against the previous run's last delivery
	_ = feed.StartTracking(context.Background(), Options{DistanceFilterM: 50})
	feed.Publish(geo.Point{Lat: 0, Lng: 0.00001, Timestamp: time.Now()})

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries across restarts, got %d", len(got))
	}
}

func TestFeedTotalDistance(t *testing.T) {
	feed := NewFeed()
	points := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.001},
	}
	d := feed.TotalDistance(points)
	if d < 100 || d > 120 {
		t.Fatalf("unexpected total distance: %v", d)
	}
}
