// Package tray provides the system tray interface for headless mode.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: a detection toggle, canvas clear,
// snapshot save, and quit.
type Tray struct {
	onToggle   func(enabled bool)
	onClear    func()
	onSnapshot func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	menuToggle *systray.MenuItem
}

// New creates a new Tray with detection enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback invoked when detection is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback invoked when the clear item is clicked.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnSnapshot sets the callback invoked when the snapshot item is clicked.
func (t *Tray) OnSnapshot(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSnapshot = fn
}

// OnQuit sets the callback invoked when the quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. Blocks until systray.Quit() is called, and
// must run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Airdraw")
	systray.SetTooltip("Airdraw gesture drawing")

	t.menuToggle = systray.AddMenuItemCheckbox("Detection enabled", "Toggle gesture detection", true)
	menuClear := systray.AddMenuItem("Clear canvas", "Wipe the drawing")
	menuSnapshot := systray.AddMenuItem("Save snapshot", "Save the drawing as PNG")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Airdraw")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuClear.ClickedCh:
				t.fire(t.onClear)
			case <-menuSnapshot.ClickedCh:
				t.fire(t.onSnapshot)
			case <-menuQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	fn := t.onToggle
	t.mu.Unlock()

	if enabled {
		t.menuToggle.Check()
	} else {
		t.menuToggle.Uncheck()
	}
	if fn != nil {
		fn(enabled)
	}
}

func (t *Tray) fire(fn func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (t *Tray) onExit() {
	t.mu.RLock()
	fn := t.onQuit
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
