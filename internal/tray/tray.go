// Package tray provides a system tray menu for toggling detection and
// switching the practised pose.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/tadasana/internal/app"
	"github.com/ayusman/tadasana/internal/pose"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onTarget func(target pose.Target)
	onOpen   func()
	onQuit   func()
	enabled  bool
	target   pose.Target
	mu       sync.RWMutex

	menuToggle    *systray.MenuItem
	menuLastScore *systray.MenuItem
	menuTargets   map[pose.Target]*systray.MenuItem
}

// New creates a new Tray reflecting the given detection state and target.
func New(target pose.Target, enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		target:  target,
	}
}

// OnToggle sets the callback invoked when detection is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnTarget sets the callback invoked when a pose is picked from the menu.
func (t *Tray) OnTarget(fn func(target pose.Target)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTarget = fn
}

// OnOpen sets the callback invoked when the browser menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback invoked when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Follow keeps the last score item and the checked pose in step with a's
// frame results until the returned cancel function is called.
func (t *Tray) Follow(a *app.App) func() {
	results, cancel := a.Subscribe()
	go func() {
		for fr := range results {
			if fr.Target != t.Target() {
				t.SetTarget(fr.Target)
			}
			t.SetLastScore(ScoreTitle(fr))
		}
	}()
	return cancel
}

func (t *Tray) onReady() {
	systray.SetTitle("Tadasana")
	systray.SetTooltip("Tadasana Pose Coach")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle pose detection")
	systray.AddSeparator()

	t.menuLastScore = systray.AddMenuItem("Last: none", "Last scored frame")
	t.menuLastScore.Disable()
	systray.AddSeparator()

	t.menuTargets = make(map[pose.Target]*systray.MenuItem, len(pose.Targets()))
	for _, target := range pose.Targets() {
		item := systray.AddMenuItemCheckbox(target.DisplayName(), "Practise "+target.DisplayName(), target == t.target)
		t.menuTargets[target] = item
		go t.watchTarget(target, item)
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the practice page")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Tadasana")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) watchTarget(target pose.Target, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleTarget(target)
	}
}

// handleToggle flips detection and updates the menu title.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleTarget(target pose.Target) {
	t.SetTarget(target)

	t.mu.RLock()
	callback := t.onTarget
	t.mu.RUnlock()

	if callback != nil {
		callback(target)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetTarget moves the check mark to target.
func (t *Tray) SetTarget(target pose.Target) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.target = target
	for tg, item := range t.menuTargets {
		if tg == target {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetLastScore updates the last score display in the menu.
func (t *Tray) SetLastScore(title string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastScore != nil {
		t.menuLastScore.SetTitle(title)
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Target returns the checked pose.
func (t *Tray) Target() pose.Target {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.target
}

// ScoreTitle renders a frame result for the last score menu item.
func ScoreTitle(fr app.FrameResult) string {
	if !fr.Detected || fr.Result == nil {
		return "Last: no pose detected"
	}
	return fmt.Sprintf("Last: %s %d/100", fr.Target.DisplayName(), fr.Result.Score)
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Detection On"
	}
	return "○ Detection Off"
}
