package app

import (
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/overlay"
	"github.com/ayusman/tadasana/internal/pose"
)

// FrameResult is the outcome of one pipeline step.
type FrameResult struct {
	Seq       int64                 `json:"seq"`
	Timestamp time.Time             `json:"timestamp"`
	Target    pose.Target           `json:"target"`
	Detected  bool                  `json:"detected"`
	Landmarks *detector.LandmarkSet `json:"landmarks,omitempty"`
	Result    *pose.Result          `json:"result,omitempty"`
	Cue       *Cue                  `json:"cue,omitempty"`
	SessionID string                `json:"session_id,omitempty"`
}

type cachedLandmarks struct {
	set   *detector.LandmarkSet
	at    time.Time
	valid bool
}

// runPipeline reads, detects and scores frames until stopCh closes.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Debug().Err(err).Msg("error reading frame")
				continue
			}

			a.processCameraFrame(frame)
			frame.Close()
		}
	}
}

// processCameraFrame detects and scores frame, then keeps an overlay
// snapshot of it for the MJPEG stream.
func (a *App) processCameraFrame(frame *gocv.Mat) {
	set, err := a.detect(frame)
	if err != nil {
		log.Error().Err(err).Msg("error detecting pose")
		return
	}

	fr, err := a.ProcessFrame(set)
	if err != nil {
		log.Error().Err(err).Msg("error scoring frame")
		return
	}

	if fr.Result != nil {
		overlay.Draw(frame, set, *fr.Result)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Debug().Err(err).Msg("error encoding snapshot")
		return
	}
	snapshot := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	a.mu.Lock()
	a.snapshot = snapshot
	a.mu.Unlock()
}

// detect runs the detector on frame, reusing the previous landmarks while the
// scene is unchanged and they are younger than RefreshInterval.
func (a *App) detect(frame *gocv.Mat) (*detector.LandmarkSet, error) {
	changed, _ := a.gate.Changed(frame)
	now := a.now()

	a.mu.RLock()
	cached, d := a.cached, a.detector
	a.mu.RUnlock()

	if !changed && cached.valid && now.Sub(cached.at) < RefreshInterval {
		return cached.set, nil
	}

	set, err := d.Detect(frame)
	if err != nil {
		a.gate.Reset()
		return nil, err
	}

	a.mu.Lock()
	a.cached = cachedLandmarks{set: set, at: now, valid: true}
	a.mu.Unlock()

	return set, nil
}

// ProcessFrame scores set against the current target, records it in the
// active session, decides whether a feedback cue is due and publishes the
// result. A nil or empty set publishes an undetected frame without a score.
func (a *App) ProcessFrame(set *detector.LandmarkSet) (FrameResult, error) {
	now := a.now()

	a.mu.Lock()
	a.seq++
	fr := FrameResult{Seq: a.seq, Timestamp: now, Target: a.target}

	if set.Len() == 0 {
		a.latest = &fr
		a.mu.Unlock()
		a.publish(fr)
		return fr, nil
	}

	res, err := a.scorer.Score(set, a.target)
	if err != nil {
		a.mu.Unlock()
		return fr, err
	}

	fr.Detected = true
	fr.Landmarks = set
	fr.Result = &res
	if a.session != nil {
		a.session.record(now, res)
		fr.SessionID = a.session.id
	}
	fr.Cue = a.cue.next(now, res)
	a.latest = &fr
	a.mu.Unlock()

	if fr.Cue != nil {
		log.Info().Str("target", fr.Target.String()).Int("score", res.Score).Msg(fr.Cue.Text)
	}

	a.publish(fr)
	return fr, nil
}

// Latest returns the most recent frame result.
func (a *App) Latest() (FrameResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return FrameResult{}, false
	}
	return *a.latest, true
}

// Snapshot returns the latest camera frame with the skeleton drawn on it,
// JPEG encoded.
func (a *App) Snapshot() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot, a.snapshot != nil
}
