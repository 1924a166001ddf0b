package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"backend-pacetrail/internal/activity"
	"backend-pacetrail/internal/location"
	"backend-pacetrail/internal/shared/geo"

	"github.com/google/uuid"
)

// samples with worse accuracy than this never enter a trajectory
const accuracyCeilingM = 50.0

// interval of the forced stats recompute so duration advances without fixes
const statsTickInterval = time.Second

var (
	ErrAlreadyInProgress = errors.New("a workout is already in progress")
	ErrNoActiveWorkout   = errors.New("no active workout to pause")
	ErrNoPausedWorkout   = errors.New("no paused workout to resume")
	ErrNoSession         = errors.New("no workout session to stop")
)

// Store persists completed workouts. The manager only ever saves.
type Store interface {
	SaveWorkout(ctx context.Context, rec Record) error
}

// Broadcaster pushes live stat frames to stream subscribers. May be nil.
type Broadcaster interface {
	Broadcast(workoutID string, payload []byte)
}

// Manager owns at most one live session and funnels every mutation through
// the four lifecycle methods plus the location callback. All state is behind
// one mutex: the ticker goroutine and the provider's delivery goroutine both
// touch the session.
type Manager struct {
	mu       sync.Mutex
	provider location.Provider
	store    Store
	hub      Broadcaster

	session     *Session
	unsubscribe func()
	tickStop    chan struct{}

	now   func() time.Time
	newID func() string
}

func NewManager(provider location.Provider, store Store, hub Broadcaster) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		hub:      hub,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start begins a new session. It fails when a session already exists in a
// non-stopped state; a lingering stopped session (stop with a failed save)
// is replaced. When the provider refuses to start, the half-built session
// is rolled back and the manager stays idle.
func (m *Manager) Start(ctx context.Context, userID string, typ activity.Type) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && m.session.State != StateStopped {
		return Session{}, ErrAlreadyInProgress
	}

	cfg := activity.ConfigFor(typ)
	m.session = &Session{
		ID:        m.newID(),
		UserID:    userID,
		Type:      typ,
		State:     StateActive,
		StartTime: m.now(),
		Points:    []geo.Point{},
	}

	opts := location.Options{
		UpdateInterval:     cfg.UpdateInterval,
		DistanceFilterM:    cfg.DistanceFilterM,
		HighAccuracy:       cfg.HighAccuracy,
		BackgroundTracking: true,
		UseNoiseFilter:     true,
	}
	if err := m.provider.StartTracking(ctx, opts); err != nil {
		m.session = nil
		return Session{}, fmt.Errorf("start workout: %w", err)
	}

	m.unsubscribe = m.provider.Subscribe(m.onLocation)
	m.startTickerLocked()
	m.recomputeLocked()

	return m.snapshotLocked(), nil
}

// Pause freezes the session. Collected points are retained; streaming and
// the stats ticker stop so displayed stats hold still.
func (m *Manager) Pause(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.State != StateActive {
		return Session{}, ErrNoActiveWorkout
	}

	m.session.PausedTime = m.now()
	m.session.State = StatePaused
	m.teardownTrackingLocked(ctx)

	return m.snapshotLocked(), nil
}

// Resume folds the paused interval into the total and restarts streaming.
// A provider failure leaves the session paused.
func (m *Manager) Resume(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.State != StatePaused {
		return Session{}, ErrNoPausedWorkout
	}

	cfg := activity.ConfigFor(m.session.Type)
	opts := location.Options{
		UpdateInterval:     cfg.UpdateInterval,
		DistanceFilterM:    cfg.DistanceFilterM,
		HighAccuracy:       cfg.HighAccuracy,
		BackgroundTracking: true,
		UseNoiseFilter:     true,
	}
	if err := m.provider.StartTracking(ctx, opts); err != nil {
		return Session{}, fmt.Errorf("resume workout: %w", err)
	}

	now := m.now()
	m.session.TotalPausedSec += now.Sub(m.session.PausedTime).Seconds()
	m.session.PausedTime = time.Time{}
	m.session.ResumedTime = now
	m.session.State = StateActive

	m.unsubscribe = m.provider.Subscribe(m.onLocation)
	m.startTickerLocked()
	m.recomputeLocked()

	return m.snapshotLocked(), nil
}

// Stop finishes the session, persists the record and clears the manager
// back to idle. When the save fails the error is returned and the stopped
// session stays resident; a retried Stop re-attempts the save from the same
// frozen snapshot.
func (m *Manager) Stop(ctx context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Record{}, ErrNoSession
	}

	if m.session.State != StateStopped {
		now := m.now()
		if m.session.State == StatePaused {
			m.session.TotalPausedSec += now.Sub(m.session.PausedTime).Seconds()
			m.session.PausedTime = time.Time{}
		}
		m.session.State = StateStopped
		m.session.EndTime = now
		m.teardownTrackingLocked(ctx)
		m.recomputeLocked()
	}

	rec := m.recordLocked()
	if err := m.store.SaveWorkout(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save workout: %w", err)
	}

	m.session = nil
	return rec, nil
}

// Current returns a snapshot of the live session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return m.snapshotLocked(), true
}

func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.State == StateActive
}

// onLocation applies the acceptance policy to one incoming fix. Rejections
// are silent: a bad sample simply never becomes a trajectory point.
func (m *Manager) onLocation(p geo.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session
	if s == nil || s.State != StateActive {
		return
	}
	if p.AccuracyM > accuracyCeilingM {
		return
	}
	if n := len(s.Points); n > 0 {
		prev := s.Points[n-1]
		// a fix dated before the trajectory tail would scramble chronology;
		// an equal timestamp computes speed 0 and passes
		if p.Timestamp.Before(prev.Timestamp) {
			return
		}
		cfg := activity.ConfigFor(s.Type)
		if geo.SpeedMps(prev, p) > cfg.MaxReasonableSpeedMps {
			return
		}
	}

	s.Points = append(s.Points, p)
	m.recomputeLocked()
}

// recomputeLocked rebuilds the stats from the trajectory and the timers.
// Idempotent: recomputing twice in a row changes nothing but the clock
// readings.
func (m *Manager) recomputeLocked() {
	s := m.session
	cfg := activity.ConfigFor(s.Type)
	now := m.now()
	if s.State == StateStopped && !s.EndTime.IsZero() {
		now = s.EndTime
	}

	st := Stats{MaxSpeedMps: s.Stats.MaxSpeedMps}
	st.DistanceM = geo.PathDistance(s.Points)
	st.DurationSec = math.Max(0, now.Sub(s.StartTime).Seconds())
	st.ActiveDurationSec = math.Max(0, st.DurationSec-s.TotalPausedSec)

	if n := len(s.Points); n >= 2 {
		st.CurrentSpeedMps = geo.SpeedMps(s.Points[n-2], s.Points[n-1])
		if st.CurrentSpeedMps > cfg.MinSpeedMps {
			st.CurrentPaceSecPerKm = 1000 / st.CurrentSpeedMps
		}
	}
	if st.CurrentSpeedMps > st.MaxSpeedMps {
		st.MaxSpeedMps = st.CurrentSpeedMps
	}
	if st.DistanceM > 0 {
		st.AveragePaceSecPerKm = st.ActiveDurationSec / (st.DistanceM / 1000)
	}
	if cfg.CaloriesPerKm > 0 {
		kcal := int(math.Round(st.DistanceM / 1000 * cfg.CaloriesPerKm))
		st.Calories = &kcal
	}

	s.Stats = st
	m.broadcastLocked()
}

func (m *Manager) broadcastLocked() {
	if m.hub == nil {
		return
	}
	payload, err := statsPayload(m.session)
	if err != nil {
		log.Printf("encode stats frame: %v", err)
		return
	}
	m.hub.Broadcast(m.session.ID, payload)
}

// teardownTrackingLocked unsubscribes and cancels the ticker before asking
// the provider to stop, so the machine can never stay wired up when a
// provider stop fails. Stop failures are logged, not surfaced.
func (m *Manager) teardownTrackingLocked(ctx context.Context) {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.tickStop != nil {
		close(m.tickStop)
		m.tickStop = nil
	}
	if err := m.provider.StopTracking(ctx); err != nil {
		log.Printf("stop tracking: %v", err)
	}
}

func (m *Manager) startTickerLocked() {
	stop := make(chan struct{})
	m.tickStop = stop

	go func() {
		ticker := time.NewTicker(statsTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				if m.session != nil && m.session.State == StateActive {
					m.recomputeLocked()
				}
				m.mu.Unlock()
			}
		}
	}()
}

// statsPayload is the JSON frame pushed to live stream subscribers.
func statsPayload(s *Session) ([]byte, error) {
	return json.Marshal(struct {
		WorkoutID string `json:"workout_id"`
		State     State  `json:"state"`
		Stats     Stats  `json:"stats"`
	}{s.ID, s.State, s.Stats})
}

func (m *Manager) snapshotLocked() Session {
	s := *m.session
	s.Points = append([]geo.Point(nil), m.session.Points...)
	return s
}

func (m *Manager) recordLocked() Record {
	s := m.session
	return Record{
		ID:              s.ID,
		UserID:          s.UserID,
		Type:            s.Type,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DistanceM:       s.Stats.DistanceM,
		DurationSec:     s.Stats.ActiveDurationSec,
		AvgPaceSecPerKm: s.Stats.AveragePaceSecPerKm,
		MaxSpeedMps:     s.Stats.MaxSpeedMps,
		Calories:        s.Stats.Calories,
		Points:          append([]geo.Point(nil), s.Points...),
	}
}
