package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is a bracketed stretch of practice against one target pose.
type Session struct {
	ID           string     `json:"id"`
	Target       string     `json:"target"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Frames       int        `json:"frames"`
	PassedFrames int        `json:"passed_frames"`
	BestScore    int        `json:"best_score"`
	MeanScore    float64    `json:"mean_score"`
	StddevScore  float64    `json:"stddev_score"`
}

// Active reports whether the session has not been finished.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, target, started_at, ended_at, frames, passed_frames, best_score, mean_score, stddev_score`

// Create inserts a new session. A zero StartedAt is set to now.
func (r *SessionRepository) Create(s *Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Target, s.StartedAt, nullTime(s.EndedAt),
		s.Frames, s.PassedFrames, s.BestScore, s.MeanScore, s.StddevScore,
	)
	return err
}

// Finish records the end time and final statistics of a session.
func (r *SessionRepository) Finish(s *Session) error {
	if s.EndedAt == nil {
		now := time.Now()
		s.EndedAt = &now
	}

	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, passed_frames = ?, best_score = ?, mean_score = ?, stddev_score = ?
		 WHERE id = ?`,
		*s.EndedAt, s.Frames, s.PassedFrames, s.BestScore, s.MeanScore, s.StddevScore, s.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	return r.query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`)
}

// ListByTarget retrieves the sessions practised against target, newest first.
func (r *SessionRepository) ListByTarget(target string) ([]*Session, error) {
	return r.query(`SELECT `+sessionColumns+` FROM sessions WHERE target = ? ORDER BY started_at DESC`, target)
}

// Delete removes a session and its frames.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func (r *SessionRepository) query(q string, args ...any) ([]*Session, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := row.Scan(&s.ID, &s.Target, &s.StartedAt, &ended,
		&s.Frames, &s.PassedFrames, &s.BestScore, &s.MeanScore, &s.StddevScore)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
