package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/tadasana/internal/pose"
	"github.com/ayusman/tadasana/internal/store"
)

// SessionStats summarizes a practice session.
type SessionStats struct {
	ID        string      `json:"id"`
	Target    pose.Target `json:"target"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   *time.Time  `json:"ended_at,omitempty"`
	pose.Summary
}

// practice is the in-memory state of the active session.
type practice struct {
	id      string
	target  pose.Target
	started time.Time
	tally   pose.Tally
	frames  []store.Frame
}

func (p *practice) record(now time.Time, res pose.Result) {
	angles, err := json.Marshal(res.Angles)
	if err != nil {
		angles = nil
	}
	p.frames = append(p.frames, store.Frame{
		Seq:        p.tally.Len(),
		Score:      res.Score,
		Passed:     res.Passed,
		Angles:     angles,
		CapturedAt: now,
	})
	p.tally.Add(res)
}

func (p *practice) stats() SessionStats {
	return SessionStats{
		ID:        p.id,
		Target:    p.target,
		StartedAt: p.started,
		Summary:   p.tally.Summary(),
	}
}

// StartSession begins recording scored frames against the current target.
func (a *App) StartSession() (SessionStats, error) {
	a.mu.Lock()
	if a.session != nil {
		a.mu.Unlock()
		return SessionStats{}, ErrSessionActive
	}
	p := &practice{
		id:      uuid.NewString(),
		target:  a.target,
		started: a.now(),
	}
	a.session = p
	stats := p.stats()
	a.mu.Unlock()

	if s := a.config.Store; s != nil {
		err := s.Sessions().Create(&store.Session{
			ID:        p.id,
			Target:    p.target.String(),
			StartedAt: p.started,
		})
		if err != nil {
			a.mu.Lock()
			if a.session == p {
				a.session = nil
			}
			a.mu.Unlock()
			return SessionStats{}, fmt.Errorf("create session: %w", err)
		}
	}

	log.Info().Str("session", stats.ID).Str("target", stats.Target.String()).Msg("practice session started")
	return stats, nil
}

// StopSession ends the active session, persists its frames and statistics
// and returns the summary. When persisting fails the session stays active so
// the stop can be retried without losing frames.
func (a *App) StopSession() (SessionStats, error) {
	a.mu.Lock()
	p := a.session
	a.session = nil
	a.mu.Unlock()

	if p == nil {
		return SessionStats{}, ErrNoActiveSession
	}

	stats := p.stats()
	ended := a.now()
	stats.EndedAt = &ended

	if s := a.config.Store; s != nil {
		if len(p.frames) > 0 {
			if err := s.Frames().Append(p.id, p.frames); err != nil {
				a.resume(p)
				return stats, fmt.Errorf("save session frames: %w", err)
			}
			p.frames = nil
		}
		err := s.Sessions().Finish(&store.Session{
			ID:           p.id,
			EndedAt:      &ended,
			Frames:       stats.Frames,
			PassedFrames: stats.PassedFrames,
			BestScore:    stats.BestScore,
			MeanScore:    stats.MeanScore,
			StddevScore:  stats.StddevScore,
		})
		if err != nil {
			a.resume(p)
			return stats, fmt.Errorf("finish session: %w", err)
		}
	}

	log.Info().
		Str("session", p.id).
		Int("frames", stats.Frames).
		Int("best", stats.BestScore).
		Float64("mean", stats.MeanScore).
		Msg("practice session stopped")
	return stats, nil
}

// resume reinstates p after a failed stop unless another session has started.
func (a *App) resume(p *practice) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		a.session = p
	}
}

// ActiveSession returns the running session's statistics so far.
func (a *App) ActiveSession() (SessionStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return SessionStats{}, false
	}
	return a.session.stats(), true
}
