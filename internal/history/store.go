package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-pacetrail/internal/db"
	"backend-pacetrail/internal/shared/geo"
	"backend-pacetrail/internal/workout"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("workout not found")

// Store persists completed workout records in Postgres. Trajectories are
// stored as a JSONB column: the record owns its full point snapshot, there
// is no separate points table to join.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

// QueryOptions narrows List. Zero values mean no filter and server defaults.
type QueryOptions struct {
	Type   string
	Limit  int
	Offset int
}

func (s *Store) SaveWorkout(ctx context.Context, rec workout.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	trajectory, err := json.Marshal(rec.Points)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO workouts (id, user_id, activity_type, start_time, end_time, distance_m, duration_sec, avg_pace_sec_per_km, max_speed_mps, calories, name, notes, trajectory)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, rec.ID, rec.UserID, string(rec.Type), rec.StartTime, rec.EndTime, rec.DistanceM,
		rec.DurationSec, rec.AvgPaceSecPerKm, rec.MaxSpeedMps, rec.Calories, rec.Name, rec.Notes, trajectory)
	return err
}

// List returns record summaries without trajectories, newest first.
func (s *Store) List(ctx context.Context, userID string, opts QueryOptions) ([]workout.Record, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	typeFilter := opts.Type
	if typeFilter == "" {
		typeFilter = "%"
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, activity_type, start_time, end_time, distance_m, duration_sec, avg_pace_sec_per_km, max_speed_mps, calories, name, notes
		FROM workouts
		WHERE user_id=$1 AND activity_type LIKE $2
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4
	`, userID, typeFilter, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []workout.Record
	for rows.Next() {
		var rec workout.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.StartTime, &rec.EndTime, &rec.DistanceM,
			&rec.DurationSec, &rec.AvgPaceSecPerKm, &rec.MaxSpeedMps, &rec.Calories, &rec.Name, &rec.Notes); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID, id string) (workout.Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, activity_type, start_time, end_time, distance_m, duration_sec, avg_pace_sec_per_km, max_speed_mps, calories, name, notes, trajectory
		FROM workouts WHERE user_id=$1 AND id=$2
	`, userID, id)

	var rec workout.Record
	var trajectory []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.StartTime, &rec.EndTime, &rec.DistanceM,
		&rec.DurationSec, &rec.AvgPaceSecPerKm, &rec.MaxSpeedMps, &rec.Calories, &rec.Name, &rec.Notes, &trajectory)
	if errors.Is(err, pgx.ErrNoRows) {
		return workout.Record{}, ErrNotFound
	}
	if err != nil {
		return workout.Record{}, err
	}

	if len(trajectory) > 0 {
		if err := json.Unmarshal(trajectory, &rec.Points); err != nil {
			return workout.Record{}, err
		}
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workouts WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func validateRecord(rec workout.Record) error {
	if rec.ID == "" || rec.UserID == "" {
		return errors.New("workout record missing id or user")
	}
	if rec.Type == "" {
		return errors.New("workout record missing activity type")
	}
	if rec.EndTime.Before(rec.StartTime) {
		return errors.New("workout record ends before it starts")
	}
	if rec.DistanceM < 0 || rec.DurationSec < 0 {
		return errors.New("workout record has negative totals")
	}
	for i, p := range rec.Points {
		if !validCoordinates(p) {
			return fmt.Errorf("trajectory point %d out of range", i)
		}
	}
	return nil
}

func validCoordinates(p geo.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
