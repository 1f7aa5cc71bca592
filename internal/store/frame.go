package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Frame is one scored frame recorded during a session.
type Frame struct {
	ID         int64           `json:"id"`
	SessionID  string          `json:"session_id"`
	Seq        int             `json:"seq"`
	Score      int             `json:"score"`
	Passed     bool            `json:"passed"`
	Angles     json.RawMessage `json:"angles"`
	CapturedAt time.Time       `json:"captured_at"`
}

// FrameRepository stores the per-frame scores of sessions.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Append inserts frames for a session in a single transaction.
func (r *FrameRepository) Append(sessionID string, frames []Frame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO session_frames (session_id, seq, score, passed, angles, captured_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		angles := f.Angles
		if angles == nil {
			angles = json.RawMessage("{}")
		}
		if f.CapturedAt.IsZero() {
			f.CapturedAt = time.Now()
		}
		if _, err := stmt.Exec(sessionID, f.Seq, f.Score, f.Passed, string(angles), f.CapturedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves all frames of a session in capture order.
func (r *FrameRepository) GetBySessionID(sessionID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, score, passed, angles, captured_at
		 FROM session_frames
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var passed int
		var angles string
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Seq, &f.Score, &passed, &angles, &f.CapturedAt); err != nil {
			return nil, err
		}
		f.Passed = passed != 0
		f.Angles = json.RawMessage(angles)
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}
