// Package tabs drives the chord/scale display surface. The lookup and
// rendering live in the frontend; this sink forwards the spoken
// description and tracks how the display was opened.
package tabs

import (
	"sync"
)

// Notifier receives display open/close events for the UI.
type Notifier interface {
	DisplayShown(description string)
	DisplayClosed()
}

// Display implements ports.DisplayControl. Opens initiated by the backend
// (as opposed to a voice command) are reported through onBackendOpen so
// the engine can arm its display-close cooldown against self-echo.
type Display struct {
	notifier      Notifier
	onBackendOpen func()

	mu   sync.Mutex
	open bool
	last string
}

func New(notifier Notifier, onBackendOpen func()) *Display {
	return &Display{notifier: notifier, onBackendOpen: onBackendOpen}
}

// Show opens the display with a chord/scale description (voice path).
func (d *Display) Show(text string) {
	d.mu.Lock()
	d.open = true
	d.last = text
	d.mu.Unlock()
	d.notifier.DisplayShown(text)
}

// ShowFromBackend opens the display programmatically and arms the
// voice-close cooldown.
func (d *Display) ShowFromBackend(text string) {
	if d.onBackendOpen != nil {
		d.onBackendOpen()
	}
	d.Show(text)
}

func (d *Display) Close() {
	d.mu.Lock()
	wasOpen := d.open
	d.open = false
	d.mu.Unlock()
	if wasOpen {
		d.notifier.DisplayClosed()
	}
}

// Open reports whether the display is currently showing.
func (d *Display) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
