// Package tray provides a system tray indicator for mudra.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
)

// Tray shows the capture state and the last reported pattern in the system
// tray. It is an event sink.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	active     bool
	last       *finger.Pattern
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuState  *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra finger-pattern capture")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle capture")
	systray.AddSeparator()

	t.menuState = systray.AddMenuItem(stateTitle(t.active), "Session state")
	t.menuState.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last reported pattern")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Web UI...", "Open the web UI in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.refresh()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
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

// Handle updates the state and last-pattern items from a session event.
func (t *Tray) Handle(e session.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Kind {
	case session.KindStarted:
		t.active = true
		t.last = nil
	case session.KindChanged:
		p := e.Pattern
		t.last = &p
	case session.KindEnded:
		t.active = false
	}
	t.refresh()
}

// SetEnabled updates the toggle without invoking the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.refresh()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Titles returns the current toggle, state and last-pattern item titles.
func (t *Tray) Titles() (toggle, state, last string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return toggleTitle(t.enabled), stateTitle(t.active), lastTitle(t.last)
}

// refresh pushes titles to the menu. Callers hold t.mu.
func (t *Tray) refresh() {
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.enabled))
	}
	if t.menuState != nil {
		t.menuState.SetTitle(stateTitle(t.active))
	}
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(t.last))
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func stateTitle(active bool) string {
	if active {
		return "State: Capturing"
	}
	return "State: Idle"
}

func lastTitle(p *finger.Pattern) string {
	if p == nil {
		return "Last: none"
	}
	return "Last: " + p.Bits()
}
