// Package tray provides a system tray menu for controlling handcalc.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onReset  func()
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when processing is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback function to be called when reset is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpen sets the callback function to be called when the web UI item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
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

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("handcalc")
	systray.SetTooltip("Hand gesture calculator")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Start or stop gesture processing")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastLabel(t.last), "Last completed calculation")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset", "Abandon the calculation in progress")
	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the web UI")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handcalc")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.invoke(func() func() { return t.onReset })
			case <-menuOpen.ClickedCh:
				t.invoke(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.invoke(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and reports it to the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.refreshLocked()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// invoke calls the callback selected under the read lock.
func (t *Tray) invoke(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetEnabled mirrors a processing toggle made elsewhere, such as the web UI.
// It does not call the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.refreshLocked()
}

// SetLastResult updates the last calculation shown in the menu.
func (t *Tray) SetLastResult(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = line
	t.refreshLocked()
}

// refreshLocked updates menu titles. Menu items are nil until the tray is ready.
func (t *Tray) refreshLocked() {
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(t.enabled))
	}
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastLabel(t.last))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastResult returns the calculation shown in the menu.
func (t *Tray) LastResult() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Running"
	}
	return "○ Stopped"
}

func lastLabel(line string) string {
	if line == "" {
		return "Last: none"
	}
	return "Last: " + line
}
