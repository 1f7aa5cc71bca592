package app

import (
	"fmt"
	"time"

	"github.com/ayusman/tadasana/internal/pose"
)

// Cue is a feedback message worth surfacing to the practitioner.
type Cue struct {
	Text        string   `json:"text"`
	Corrections []string `json:"corrections,omitempty"`
}

// cueState limits cues to one per CueInterval, and within that to frames
// whose score moved by more than cueScoreDelta or exceeds cueHighScore.
type cueState struct {
	last      time.Time
	lastScore int
}

const (
	cueScoreDelta = 10
	cueHighScore  = 80
)

func (c *cueState) reset() {
	c.last = time.Time{}
}

func (c *cueState) next(now time.Time, res pose.Result) *Cue {
	if !c.last.IsZero() && now.Sub(c.last) <= CueInterval {
		return nil
	}

	prev := c.lastScore
	c.last = now
	c.lastScore = res.Score

	delta := res.Score - prev
	if delta < 0 {
		delta = -delta
	}
	if delta <= cueScoreDelta && res.Score <= cueHighScore {
		return nil
	}

	return &Cue{
		Text:        cueText(res),
		Corrections: res.Corrections,
	}
}

func cueText(res pose.Result) string {
	var lead string
	switch {
	case res.Score >= 80:
		lead = "Great!"
	case res.Score >= 60:
		lead = "Good effort!"
	default:
		lead = "Keep practicing!"
	}
	return fmt.Sprintf("%s Your score is %d. %s", lead, res.Score, res.Feedback)
}
