// Package app runs the practice pipeline: frames from the camera go through
// the pose detector and the scorer, and each result is fanned out to the
// browser, the tray and the active practice session.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
	"github.com/ayusman/tadasana/internal/store"
)

// Pipeline timing constants.
const (
	// FPS is the frame rate of the practice loop.
	FPS = 15
	// CueInterval is the minimum time between two spoken-style feedback cues.
	CueInterval = 5 * time.Second
	// RefreshInterval bounds how long landmarks from an unchanged frame are reused.
	RefreshInterval = time.Second
	// SubscriberBuffer is the channel depth of each result subscriber.
	SubscriberBuffer = 8
)

// ErrNoActiveSession is returned when stopping a session that was never started.
var ErrNoActiveSession = errors.New("no active practice session")

// ErrSessionActive is returned when starting a session while one is running.
var ErrSessionActive = errors.New("practice session already active")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Scorer   *pose.Scorer
	Camera   capture.Camera
	Detector detector.Detector

	// ChangeThreshold is the percentage of changed pixels that forces a new
	// detection. Zero uses capture.DefaultChangeThreshold.
	ChangeThreshold float64

	// Now overrides the clock in tests.
	Now func() time.Time
}

// App is the main application that orchestrates pose detection and scoring.
type App struct {
	config   Config
	camera   capture.Camera
	gate     *capture.ChangeGate
	detector detector.Detector
	scorer   *pose.Scorer
	now      func() time.Time

	mu       sync.RWMutex
	target   pose.Target
	enabled  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	seq      int64
	latest   *FrameResult
	snapshot []byte
	session  *practice
	cue      cueState
	cached   cachedLandmarks

	subMu  sync.Mutex
	subs   map[int]chan FrameResult
	nextID int
}

// New creates a new App. A nil Scorer uses the default thresholds; a nil
// Detector falls back to MediaPipe and then to a mock.
func New(config Config) (*App, error) {
	scorer := config.Scorer
	if scorer == nil {
		s, err := pose.NewScorer(pose.DefaultThresholds())
		if err != nil {
			return nil, err
		}
		scorer = s
	}

	cam := config.Camera
	if cam == nil {
		cam = capture.NewCamera(capture.DefaultOptions())
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	a := &App{
		config:   config,
		camera:   cam,
		gate:     capture.NewChangeGate(config.ChangeThreshold),
		detector: config.Detector,
		scorer:   scorer,
		now:      now,
		target:   pose.Mountain,
		subs:     make(map[int]chan FrameResult),
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Info().Msg("using MediaPipe pose detection")
		} else {
			log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
		}
	}

	if err := a.restoreTarget(); err != nil {
		return nil, err
	}

	return a, nil
}

// restoreTarget loads the persisted target, if any.
func (a *App) restoreTarget() error {
	if a.config.Store == nil {
		return nil
	}

	name, err := a.config.Store.Settings().Get(store.SettingTarget)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load target setting: %w", err)
	}

	t, err := pose.ParseTarget(name)
	if err != nil {
		log.Warn().Str("target", name).Msg("ignoring stored target")
		return nil
	}
	a.target = t
	return nil
}

// SetEnabled enables or disables pose detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether pose detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
	a.cached = cachedLandmarks{}
}

// Target returns the pose currently being practised.
func (a *App) Target() pose.Target {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.target
}

// SetTarget switches the practised pose, resets the cue timer and persists
// the choice.
func (a *App) SetTarget(t pose.Target) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d", pose.ErrUnknownTarget, int(t))
	}

	a.mu.Lock()
	a.target = t
	a.cue.reset()
	a.mu.Unlock()

	log.Info().Str("target", t.String()).Msg("target pose changed")

	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().Set(store.SettingTarget, t.String()); err != nil {
		return fmt.Errorf("save target setting: %w", err)
	}
	return nil
}

// NextTarget advances to the following pose, wrapping at the end.
func (a *App) NextTarget() (pose.Target, error) {
	t := a.Target().Next()
	return t, a.SetTarget(t)
}

// PreviousTarget steps back to the preceding pose, wrapping at the start.
func (a *App) PreviousTarget() (pose.Target, error) {
	t := a.Target().Previous()
	return t, a.SetTarget(t)
}

// Start opens the camera and begins the practice loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(FPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Info().Int("fps", FPS).Msg("practice pipeline started")
	return nil
}

// Stop halts the practice loop and releases the camera. It is safe to call
// when the loop is not running.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Error().Err(err).Msg("error closing camera")
	}
	a.gate.Reset()

	log.Info().Msg("practice pipeline stopped")
}

// Close stops the pipeline and releases the detector.
func (a *App) Close() error {
	a.Stop()
	a.gate.Close()

	a.mu.Lock()
	d := a.detector
	a.mu.Unlock()

	if d != nil {
		if err := d.Close(); err != nil {
			return fmt.Errorf("close detector: %w", err)
		}
	}
	return nil
}

// Running reports whether the practice loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Scorer returns the pose scorer.
func (a *App) Scorer() *pose.Scorer {
	return a.scorer
}

// Store returns the backing store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
