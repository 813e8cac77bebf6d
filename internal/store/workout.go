package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/repcoach/internal/reps"
)

// WorkoutSession represents one running stretch of a single exercise mode.
type WorkoutSession struct {
	ID        string
	Mode      string
	StartedAt time.Time
	EndedAt   *time.Time
	RepCount  int
}

// WorkoutRep is one counted, scored rep within a session.
type WorkoutRep struct {
	ID        int64
	SessionID string
	RepNumber int
	DepthPct  float64
	TempoMs   int64
	Score     float64
	Verdict   string
	CreatedAt time.Time
}

// WorkoutRepository records workout sessions and their reps.
type WorkoutRepository struct {
	db *sql.DB
}

// Workouts returns the workout repository for this store.
func (s *Store) Workouts() *WorkoutRepository {
	return &WorkoutRepository{db: s.db}
}

// StartSession inserts a new workout session and returns it.
func (r *WorkoutRepository) StartSession(mode string) (*WorkoutSession, error) {
	ws := &WorkoutSession{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO workout_sessions (id, mode, started_at) VALUES (?, ?, ?)`,
		ws.ID, ws.Mode, ws.StartedAt,
	)
	if err != nil {
		return nil, err
	}

	return ws, nil
}

// EndSession stamps the session's end time.
func (r *WorkoutRepository) EndSession(id string) error {
	result, err := r.db.Exec(
		`UPDATE workout_sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRep appends a scored rep to a session.
func (r *WorkoutRepository) RecordRep(sessionID string, repNumber int, q reps.Quality) error {
	_, err := r.db.Exec(
		`INSERT INTO workout_reps (session_id, rep_number, depth_pct, tempo_ms, score, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, repNumber, q.DepthPct, q.TempoMs, q.Score, string(q.Verdict), time.Now(),
	)
	return err
}

// ListSessions returns the most recent sessions with their rep counts.
func (r *WorkoutRepository) ListSessions(limit int) ([]*WorkoutSession, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT s.id, s.mode, s.started_at, s.ended_at, COUNT(r.id)
		 FROM workout_sessions s
		 LEFT JOIN workout_reps r ON r.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*WorkoutSession
	for rows.Next() {
		ws := &WorkoutSession{}
		var ended sql.NullTime
		if err := rows.Scan(&ws.ID, &ws.Mode, &ws.StartedAt, &ended, &ws.RepCount); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			ws.EndedAt = &t
		}
		sessions = append(sessions, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetSession returns a single session by id.
func (r *WorkoutRepository) GetSession(id string) (*WorkoutSession, error) {
	ws := &WorkoutSession{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT s.id, s.mode, s.started_at, s.ended_at, COUNT(r.id)
		 FROM workout_sessions s
		 LEFT JOIN workout_reps r ON r.session_id = s.id
		 WHERE s.id = ?
		 GROUP BY s.id`,
		id,
	).Scan(&ws.ID, &ws.Mode, &ws.StartedAt, &ended, &ws.RepCount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		ws.EndedAt = &t
	}
	return ws, nil
}

// ListReps returns all reps of a session in order.
func (r *WorkoutRepository) ListReps(sessionID string) ([]*WorkoutRep, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, rep_number, depth_pct, tempo_ms, score, verdict, created_at
		 FROM workout_reps WHERE session_id = ? ORDER BY rep_number`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*WorkoutRep
	for rows.Next() {
		wr := &WorkoutRep{}
		if err := rows.Scan(&wr.ID, &wr.SessionID, &wr.RepNumber, &wr.DepthPct,
			&wr.TempoMs, &wr.Score, &wr.Verdict, &wr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, wr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
