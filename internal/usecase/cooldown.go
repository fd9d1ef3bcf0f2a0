package usecase

import (
	"time"

	"bandmate/internal/domain"
)

// CooldownConfig holds the four independent timing rules of the guard.
type CooldownConfig struct {
	// Dispatch suppresses any new final-result command after an accepted
	// one, absorbing duplicate recognitions of the same utterance.
	Dispatch time.Duration
	// Interim is the minimum spacing between identical interim results.
	Interim time.Duration
	// ModeStart suppresses Stop/Pause for a window after Metronome or
	// BackingTrack entry, so the assistant's own scripted guidance picked
	// back up by the microphone cannot instantly exit the mode.
	ModeStart time.Duration
	// DisplayClose suppresses voice-triggered CloseDisplay after the
	// backend programmatically opened the display, for the same reason.
	DisplayClose time.Duration
}

// DefaultCooldowns returns the documented default windows.
func DefaultCooldowns() CooldownConfig {
	return CooldownConfig{
		Dispatch:     2500 * time.Millisecond,
		Interim:      400 * time.Millisecond,
		ModeStart:    6000 * time.Millisecond,
		DisplayClose: 6000 * time.Millisecond,
	}
}

func (c CooldownConfig) withDefaults() CooldownConfig {
	d := DefaultCooldowns()
	if c.Dispatch <= 0 {
		c.Dispatch = d.Dispatch
	}
	if c.Interim <= 0 {
		c.Interim = d.Interim
	}
	if c.ModeStart <= 0 {
		c.ModeStart = d.ModeStart
	}
	if c.DisplayClose <= 0 {
		c.DisplayClose = d.DisplayClose
	}
	return c
}

// cooldownGuard tracks the timestamps the suppression rules compare
// against. Expiry is checked lazily by timestamp comparison; the guard
// owns no timers. Not safe for concurrent use; the controller serializes
// access.
type cooldownGuard struct {
	cfg CooldownConfig

	lastDispatchAt  time.Time
	lastModeStartAt map[domain.ActiveMode]time.Time
	displayOpenedAt time.Time

	lastInterimText string
	lastInterimAt   time.Time
}

func newCooldownGuard(cfg CooldownConfig) *cooldownGuard {
	return &cooldownGuard{
		cfg:             cfg.withDefaults(),
		lastModeStartAt: make(map[domain.ActiveMode]time.Time),
	}
}

func (g *cooldownGuard) dispatchSuppressed(now time.Time) bool {
	return withinWindow(g.lastDispatchAt, now, g.cfg.Dispatch)
}

func (g *cooldownGuard) markDispatch(now time.Time) {
	g.lastDispatchAt = now
}

// interimDuplicate reports whether an identical interim arrived inside the
// debounce window, and records this one either way.
func (g *cooldownGuard) interimDuplicate(text string, now time.Time) bool {
	duplicate := text == g.lastInterimText && withinWindow(g.lastInterimAt, now, g.cfg.Interim)
	g.lastInterimText = text
	g.lastInterimAt = now
	return duplicate
}

func (g *cooldownGuard) modeStopSuppressed(mode domain.ActiveMode, now time.Time) bool {
	start, ok := g.lastModeStartAt[mode]
	return ok && withinWindow(start, now, g.cfg.ModeStart)
}

func (g *cooldownGuard) markModeStart(mode domain.ActiveMode, now time.Time) {
	g.lastModeStartAt[mode] = now
}

func (g *cooldownGuard) displayCloseSuppressed(now time.Time) bool {
	return withinWindow(g.displayOpenedAt, now, g.cfg.DisplayClose)
}

func (g *cooldownGuard) markDisplayOpened(now time.Time) {
	g.displayOpenedAt = now
}

// reset zeroes the clock. Called when voice input is disabled.
func (g *cooldownGuard) reset() {
	g.lastDispatchAt = time.Time{}
	g.displayOpenedAt = time.Time{}
	g.lastInterimText = ""
	g.lastInterimAt = time.Time{}
	g.lastModeStartAt = make(map[domain.ActiveMode]time.Time)
}

// withinWindow treats the window as inclusive: an event landing exactly on
// the boundary is still suppressed.
func withinWindow(since, now time.Time, window time.Duration) bool {
	if since.IsZero() {
		return false
	}
	return now.Sub(since) <= window
}
