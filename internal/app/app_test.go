package app

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
	"github.com/ayusman/tadasana/internal/store"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestApp builds an App over a mock camera and detector.
func newTestApp(t *testing.T, s *store.Store, clock *fakeClock) (*App, *detector.MockDetector) {
	t.Helper()

	det := detector.NewMockDetector()
	cfg := Config{
		Store:    s,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: det,
	}
	if clock != nil {
		cfg.Now = clock.Now
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, det
}

// misalignedMountain scores 80 against Mountain: the left hip sits 0.07
// to the side of the shoulder.
func misalignedMountain() *detector.LandmarkSet {
	set := detector.MountainLandmarks()
	set.Set(detector.LeftHip, detector.Landmark{X: 0.62, Y: 0.60, Visibility: 0.99})
	return set
}

func TestNew_Defaults(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	if a.Target() != pose.Mountain {
		t.Errorf("Target() = %v, want mountain", a.Target())
	}
	if a.IsEnabled() {
		t.Error("detection should start disabled")
	}
	if a.Running() {
		t.Error("pipeline should not be running before Start")
	}
	if a.Scorer().Thresholds() != pose.DefaultThresholds() {
		t.Error("nil scorer should use the default thresholds")
	}
	if _, ok := a.Latest(); ok {
		t.Error("Latest() should be empty before any frame")
	}
}

func TestApp_TargetPersistence(t *testing.T) {
	s := newTestStore(t)

	a, _ := newTestApp(t, s, nil)
	if err := a.SetTarget(pose.Warrior2); err != nil {
		t.Fatalf("SetTarget() error = %v", err)
	}

	if got, _ := s.Settings().Get(store.SettingTarget); got != "warrior2" {
		t.Errorf("stored target = %q, want warrior2", got)
	}

	restored, _ := newTestApp(t, s, nil)
	if restored.Target() != pose.Warrior2 {
		t.Errorf("restored Target() = %v, want warrior2", restored.Target())
	}
}

func TestApp_IgnoresInvalidStoredTarget(t *testing.T) {
	s := newTestStore(t)
	if err := s.Settings().Set(store.SettingTarget, "headstand"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	a, _ := newTestApp(t, s, nil)
	if a.Target() != pose.Mountain {
		t.Errorf("Target() = %v, want mountain", a.Target())
	}
}

func TestApp_SetTarget_Invalid(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	if err := a.SetTarget(pose.Target(42)); !errors.Is(err, pose.ErrUnknownTarget) {
		t.Errorf("SetTarget() error = %v, want ErrUnknownTarget", err)
	}
	if a.Target() != pose.Mountain {
		t.Error("invalid target should not change the current target")
	}
}

func TestApp_CycleTargets(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	got, err := a.PreviousTarget()
	if err != nil || got != pose.Warrior2 {
		t.Errorf("PreviousTarget() = %v, %v; want warrior2", got, err)
	}

	got, err = a.NextTarget()
	if err != nil || got != pose.Mountain {
		t.Errorf("NextTarget() = %v, %v; want mountain", got, err)
	}

	got, _ = a.NextTarget()
	if got != pose.Tree || a.Target() != pose.Tree {
		t.Errorf("NextTarget() = %v, want tree", got)
	}
}

func TestApp_ProcessFrame(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	t.Run("scores against the current target", func(t *testing.T) {
		fr, err := a.ProcessFrame(detector.MountainLandmarks())
		if err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
		if !fr.Detected || fr.Result == nil {
			t.Fatal("expected a scored frame")
		}
		if fr.Result.Score != 100 || !fr.Result.Passed {
			t.Errorf("score = %d passed = %v, want 100 true", fr.Result.Score, fr.Result.Passed)
		}
		if fr.Target != pose.Mountain || fr.Result.Feedback != "Great mountain pose!" {
			t.Errorf("unexpected result %+v", fr.Result)
		}
	})

	t.Run("follows target changes", func(t *testing.T) {
		if err := a.SetTarget(pose.ChildsPose); err != nil {
			t.Fatalf("SetTarget() error = %v", err)
		}
		fr, _ := a.ProcessFrame(detector.MountainLandmarks())
		if fr.Result.Score != 60 || fr.Result.Passed {
			t.Errorf("standing figure as child's pose: score = %d, want 60", fr.Result.Score)
		}
		if fr.Result.Feedback != "Fold forward more" {
			t.Errorf("Feedback = %q", fr.Result.Feedback)
		}
	})

	t.Run("empty frame is undetected", func(t *testing.T) {
		for _, set := range []*detector.LandmarkSet{nil, detector.NewLandmarkSet()} {
			fr, err := a.ProcessFrame(set)
			if err != nil {
				t.Fatalf("ProcessFrame() error = %v", err)
			}
			if fr.Detected || fr.Result != nil {
				t.Errorf("expected an undetected frame, got %+v", fr)
			}
		}
	})

	t.Run("sequence numbers increase", func(t *testing.T) {
		first, _ := a.ProcessFrame(nil)
		second, _ := a.ProcessFrame(nil)
		if second.Seq != first.Seq+1 {
			t.Errorf("Seq %d then %d", first.Seq, second.Seq)
		}
		latest, ok := a.Latest()
		if !ok || latest.Seq != second.Seq {
			t.Errorf("Latest() = %d, want %d", latest.Seq, second.Seq)
		}
	})
}

func TestApp_Session(t *testing.T) {
	s := newTestStore(t)
	clock := newFakeClock()
	a, _ := newTestApp(t, s, clock)

	if _, err := a.StopSession(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("StopSession() without a session error = %v, want ErrNoActiveSession", err)
	}

	started, err := a.StartSession()
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if started.ID == "" || started.Target != pose.Mountain {
		t.Errorf("unexpected session %+v", started)
	}

	if _, err := a.StartSession(); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second StartSession() error = %v, want ErrSessionActive", err)
	}

	frames := []*detector.LandmarkSet{
		detector.MountainLandmarks(),
		misalignedMountain(),
		nil,
		detector.MountainLandmarks(),
	}
	for _, set := range frames {
		clock.Advance(100 * time.Millisecond)
		fr, err := a.ProcessFrame(set)
		if err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
		if fr.Detected && fr.SessionID != started.ID {
			t.Errorf("frame session = %q, want %q", fr.SessionID, started.ID)
		}
	}

	active, ok := a.ActiveSession()
	if !ok || active.Frames != 3 {
		t.Errorf("ActiveSession() = %+v, %v; want 3 frames", active, ok)
	}

	clock.Advance(time.Second)
	stats, err := a.StopSession()
	if err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}
	if stats.Frames != 3 || stats.PassedFrames != 3 || stats.BestScore != 100 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.EndedAt == nil || !stats.EndedAt.Equal(clock.Now()) {
		t.Errorf("EndedAt = %v, want %v", stats.EndedAt, clock.Now())
	}

	saved, err := s.Sessions().GetByID(started.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if saved.Active() || saved.Frames != 3 || saved.BestScore != 100 {
		t.Errorf("unexpected saved session %+v", saved)
	}

	savedFrames, err := s.Frames().GetBySessionID(started.ID)
	if err != nil {
		t.Fatalf("GetBySessionID() error = %v", err)
	}
	if len(savedFrames) != 3 || savedFrames[1].Score != 80 {
		t.Errorf("unexpected saved frames %+v", savedFrames)
	}

	if _, ok := a.ActiveSession(); ok {
		t.Error("no session should be active after StopSession")
	}
}

func TestApp_SessionWithoutStore(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	if _, err := a.StartSession(); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	a.ProcessFrame(detector.TreeLandmarks())

	stats, err := a.StopSession()
	if err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}
	if stats.Frames != 1 {
		t.Errorf("Frames = %d, want 1", stats.Frames)
	}
}

// Run with -race: sessions start and stop while the pipeline records frames.
func TestApp_SessionConcurrentWithFrames(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s, nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				if _, err := a.ProcessFrame(detector.MountainLandmarks()); err != nil {
					t.Errorf("ProcessFrame() error = %v", err)
					return
				}
			}
		}
	}()

	for i := 0; i < 20; i++ {
		started, err := a.StartSession()
		if err != nil {
			t.Fatalf("StartSession() error = %v", err)
		}
		if started.Frames != 0 {
			t.Errorf("new session reports %d frames", started.Frames)
		}
		if _, err := a.StopSession(); err != nil {
			t.Fatalf("StopSession() error = %v", err)
		}
	}

	close(done)
	wg.Wait()
}

func TestApp_StopSessionKeepsFramesOnSaveError(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s, nil)

	started, err := a.StartSession()
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	a.ProcessFrame(detector.MountainLandmarks())
	a.ProcessFrame(misalignedMountain())

	if _, err := s.DB().Exec(`ALTER TABLE session_frames RENAME TO session_frames_offline`); err != nil {
		t.Fatalf("rename table: %v", err)
	}

	if _, err := a.StopSession(); err == nil {
		t.Fatal("StopSession() should fail while frames cannot be saved")
	}

	active, ok := a.ActiveSession()
	if !ok || active.ID != started.ID || active.Frames != 2 {
		t.Fatalf("ActiveSession() = %+v, %v; want %s with 2 frames", active, ok, started.ID)
	}

	if _, err := s.DB().Exec(`ALTER TABLE session_frames_offline RENAME TO session_frames`); err != nil {
		t.Fatalf("restore table: %v", err)
	}

	stats, err := a.StopSession()
	if err != nil {
		t.Fatalf("retried StopSession() error = %v", err)
	}
	if stats.Frames != 2 {
		t.Errorf("Frames = %d, want 2", stats.Frames)
	}

	saved, err := s.Frames().GetBySessionID(started.ID)
	if err != nil {
		t.Fatalf("GetBySessionID() error = %v", err)
	}
	if len(saved) != 2 || saved[0].Seq != 0 || saved[1].Seq != 1 {
		t.Errorf("unexpected saved frames %+v", saved)
	}

	session, err := s.Sessions().GetByID(started.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if session.Active() || session.Frames != 2 {
		t.Errorf("unexpected saved session %+v", session)
	}
}

func TestApp_CueCadence(t *testing.T) {
	clock := newFakeClock()
	a, _ := newTestApp(t, nil, clock)

	steps := []struct {
		name    string
		advance time.Duration
		set     *detector.LandmarkSet
		wantCue bool
	}{
		{"first frame moves from zero", 0, misalignedMountain(), true},
		{"inside the interval", 2 * time.Second, detector.MountainLandmarks(), false},
		{"steady middling score", 6 * time.Second, misalignedMountain(), false},
		{"high score", 6 * time.Second, detector.MountainLandmarks(), true},
		{"high score again after the interval", 6 * time.Second, detector.MountainLandmarks(), true},
		{"exactly at the interval", CueInterval, detector.MountainLandmarks(), false},
	}

	for _, step := range steps {
		clock.Advance(step.advance)
		fr, err := a.ProcessFrame(step.set)
		if err != nil {
			t.Fatalf("%s: ProcessFrame() error = %v", step.name, err)
		}
		if (fr.Cue != nil) != step.wantCue {
			t.Errorf("%s: cue = %+v, want cue %v", step.name, fr.Cue, step.wantCue)
		}
	}

	t.Run("changing target resets the timer", func(t *testing.T) {
		a.SetTarget(pose.Mountain)
		fr, _ := a.ProcessFrame(detector.MountainLandmarks())
		if fr.Cue == nil {
			t.Fatal("expected a cue right after switching target")
		}
		if fr.Cue.Text != "Great! Your score is 100. Great mountain pose!" {
			t.Errorf("Cue.Text = %q", fr.Cue.Text)
		}
	})
}

func TestCueText(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Great! Your score is 100. ok"},
		{80, "Great! Your score is 80. ok"},
		{79, "Good effort! Your score is 79. ok"},
		{60, "Good effort! Your score is 60. ok"},
		{59, "Keep practicing! Your score is 59. ok"},
	}
	for _, tt := range tests {
		if got := cueText(pose.Result{Score: tt.score, Feedback: "ok"}); got != tt.want {
			t.Errorf("cueText(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestApp_Subscribe(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	ch, cancel := a.Subscribe()

	a.ProcessFrame(detector.MountainLandmarks())

	select {
	case fr := <-ch:
		if fr.Result == nil || fr.Result.Score != 100 {
			t.Errorf("unexpected frame %+v", fr)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the frame")
	}

	// A subscriber that never reads must not block the pipeline.
	for i := 0; i < SubscriberBuffer*3; i++ {
		a.ProcessFrame(nil)
	}
	if len(ch) != SubscriberBuffer {
		t.Errorf("buffered %d frames, want %d", len(ch), SubscriberBuffer)
	}

	cancel()
	cancel()

	for range ch {
	}
	a.ProcessFrame(nil)
}
