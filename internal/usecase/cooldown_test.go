package usecase

import (
	"testing"
	"time"

	"bandmate/internal/domain"
)

func TestDispatchCooldownWindow(t *testing.T) {
	t.Parallel()

	g := newCooldownGuard(DefaultCooldowns())
	base := time.Unix(1000, 0)

	if g.dispatchSuppressed(base) {
		t.Fatalf("fresh guard must not suppress")
	}
	g.markDispatch(base)

	if !g.dispatchSuppressed(base.Add(2500 * time.Millisecond)) {
		t.Fatalf("dispatch at the boundary must still be suppressed")
	}
	if g.dispatchSuppressed(base.Add(2501 * time.Millisecond)) {
		t.Fatalf("dispatch past the boundary must pass")
	}
}

func TestInterimDuplicateDebounce(t *testing.T) {
	t.Parallel()

	g := newCooldownGuard(DefaultCooldowns())
	base := time.Unix(1000, 0)

	if g.interimDuplicate("microphone on", base) {
		t.Fatalf("first interim is never a duplicate")
	}
	if !g.interimDuplicate("microphone on", base.Add(399*time.Millisecond)) {
		t.Fatalf("identical interim inside the window must be dropped")
	}
	// Different text resets the comparison even inside the window.
	if g.interimDuplicate("microphone off", base.Add(100*time.Millisecond)) {
		t.Fatalf("different interim text is not a duplicate")
	}
	if g.interimDuplicate("microphone off", base.Add(600*time.Millisecond)) {
		t.Fatalf("identical interim past the window must pass")
	}
}

func TestModeStartCooldownBoundary(t *testing.T) {
	t.Parallel()

	g := newCooldownGuard(DefaultCooldowns())
	base := time.Unix(1000, 0)

	if g.modeStopSuppressed(domain.ModeMetronome, base) {
		t.Fatalf("unstarted mode must not suppress stops")
	}
	g.markModeStart(domain.ModeMetronome, base)

	if !g.modeStopSuppressed(domain.ModeMetronome, base.Add(6000*time.Millisecond)) {
		t.Fatalf("stop at exactly 6000ms must still be suppressed")
	}
	if g.modeStopSuppressed(domain.ModeMetronome, base.Add(6001*time.Millisecond)) {
		t.Fatalf("stop at 6001ms must pass")
	}
	// Each mode keeps its own clock.
	if g.modeStopSuppressed(domain.ModeBackingTrack, base.Add(time.Second)) {
		t.Fatalf("backing track has no start recorded and must not suppress")
	}
}

func TestDisplayCloseCooldown(t *testing.T) {
	t.Parallel()

	g := newCooldownGuard(DefaultCooldowns())
	base := time.Unix(1000, 0)

	if g.displayCloseSuppressed(base) {
		t.Fatalf("no backend open recorded, close must pass")
	}
	g.markDisplayOpened(base)
	if !g.displayCloseSuppressed(base.Add(6 * time.Second)) {
		t.Fatalf("close inside the window must be suppressed")
	}
	if g.displayCloseSuppressed(base.Add(6*time.Second + time.Millisecond)) {
		t.Fatalf("close past the window must pass")
	}
}

func TestGuardReset(t *testing.T) {
	t.Parallel()

	g := newCooldownGuard(DefaultCooldowns())
	base := time.Unix(1000, 0)
	g.markDispatch(base)
	g.markModeStart(domain.ModeMetronome, base)
	g.markDisplayOpened(base)
	g.interimDuplicate("pause", base)

	g.reset()

	later := base.Add(time.Millisecond)
	if g.dispatchSuppressed(later) || g.modeStopSuppressed(domain.ModeMetronome, later) || g.displayCloseSuppressed(later) {
		t.Fatalf("reset guard must not suppress anything")
	}
	if g.interimDuplicate("pause", later) {
		t.Fatalf("reset guard must forget the last interim")
	}
}

func TestCooldownConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := CooldownConfig{Dispatch: time.Second}.withDefaults()
	if cfg.Dispatch != time.Second {
		t.Fatalf("explicit value must survive: %s", cfg.Dispatch)
	}
	if cfg.Interim != 400*time.Millisecond || cfg.ModeStart != 6*time.Second || cfg.DisplayClose != 6*time.Second {
		t.Fatalf("unset values must default: %+v", cfg)
	}
}
