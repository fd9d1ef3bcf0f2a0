package usecase

import (
	"bandmate/internal/domain"
	"bandmate/internal/ports"
)

// modeArbiter owns the single active-mode variable and the saved
// microphone flag restored on exit. All mutation happens under the
// controller lock.
type modeArbiter struct {
	mode            domain.ActiveMode
	micEnabled      bool
	savedMicEnabled bool

	mic    ports.AssistantMic
	events ports.EventSink
}

func newModeArbiter(mic ports.AssistantMic, events ports.EventSink) *modeArbiter {
	return &modeArbiter{mode: domain.ModeNone, mic: mic, events: events}
}

func (a *modeArbiter) activeMode() domain.ActiveMode { return a.mode }

// canEnterExclusive reports whether Metronome/BackingTrack entry is legal:
// only from None or BackendMic.
func (a *modeArbiter) canEnterExclusive() bool {
	return a.mode == domain.ModeNone || a.mode == domain.ModeBackendMic
}

func (a *modeArbiter) setMicEnabled(enabled bool) {
	if a.micEnabled == enabled {
		return
	}
	a.micEnabled = enabled
	a.mic.SetEnabled(enabled)
	a.events.MicStateChanged(enabled)
}

// enterBackendMic is the None -> BackendMic transition on MicOn.
func (a *modeArbiter) enterBackendMic() bool {
	if a.mode != domain.ModeNone {
		return false
	}
	a.mode = domain.ModeBackendMic
	a.setMicEnabled(true)
	a.events.ModeChanged(a.mode)
	return true
}

// enterExclusive records the current mic flag, disables the mic, and
// transfers ownership to the new mode.
func (a *modeArbiter) enterExclusive(mode domain.ActiveMode) bool {
	if !a.canEnterExclusive() {
		return false
	}
	a.savedMicEnabled = a.micEnabled
	a.setMicEnabled(false)
	a.mode = mode
	a.events.ModeChanged(mode)
	return true
}

// exitToNone leaves the current mode. For exclusive modes the saved mic
// flag is restored unless the exit path forces the mic off.
func (a *modeArbiter) exitToNone(forceMicOff bool) {
	leaving := a.mode
	a.mode = domain.ModeNone

	switch {
	case forceMicOff:
		a.setMicEnabled(false)
	case leaving == domain.ModeMetronome || leaving == domain.ModeBackingTrack:
		a.setMicEnabled(a.savedMicEnabled)
	case leaving == domain.ModeBackendMic:
		a.setMicEnabled(false)
	}

	if leaving != domain.ModeNone {
		a.events.ModeChanged(domain.ModeNone)
	}
}
