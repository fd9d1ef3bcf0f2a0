package usecase

import (
	"time"

	"bandmate/internal/classify"
	"bandmate/internal/domain"
)

// DefaultCaptureTimeout is the deadline for all three capture kinds.
const DefaultCaptureTimeout = 5000 * time.Millisecond

// pendingCapture is the "wait for the next utterance" state. At most one
// is outstanding; beginCapture replaces any previous one. The generation
// token ties each deadline timer to the capture it was armed for, so a
// stale timer firing after resolution cannot clear a newer capture.
type pendingCapture struct {
	kind        domain.CaptureKind
	deadline    time.Time
	chimePlayed bool
	gen         uint64
	timer       *time.Timer
}

// beginCapture cancels any existing capture's timer and arms a new one.
// Caller holds the controller lock.
func (c *VoiceController) beginCapture(kind domain.CaptureKind, now time.Time) {
	c.cancelCaptureLocked()

	c.captureGen++
	gen := c.captureGen
	c.capture = &pendingCapture{
		kind:     kind,
		deadline: now.Add(c.captureTimeout),
		gen:      gen,
		timer: time.AfterFunc(c.captureTimeout, func() {
			c.onCaptureDeadline(gen)
		}),
	}

	c.ack.Acknowledge(domain.AckAccept)
	c.capture.chimePlayed = true
	c.events.CaptureStarted(kind)
}

// cancelCaptureLocked stops the deadline timer and clears the capture
// without emitting anything. Caller holds the controller lock.
func (c *VoiceController) cancelCaptureLocked() {
	if c.capture == nil {
		return
	}
	if c.capture.timer != nil {
		c.capture.timer.Stop()
	}
	c.capture = nil
}

// onCaptureDeadline runs on the timer goroutine. The generation check
// makes a firing for an already-replaced capture a no-op.
func (c *VoiceController) onCaptureDeadline(gen uint64) {
	c.mu.Lock()
	if c.capture == nil || c.capture.gen != gen {
		c.mu.Unlock()
		return
	}
	kind := c.capture.kind
	c.capture = nil
	c.mu.Unlock()

	c.ack.Acknowledge(domain.AckReject)
	c.events.CaptureTimedOut(kind)
}

// captureOverride checks a transcript arriving during a capture against
// the small always-eligible override set: mic toggles, the generic
// stop/pause/play/save actions, display close, and, for the BPM capture
// only, a wake word plus numeric BPM which becomes StartMetronome rather
// than a raw payload.
func captureOverride(text string, kind domain.CaptureKind) (domain.CommandIntent, bool) {
	switch intent := classify.Classify(text, classify.Context{}); intent.Kind {
	case domain.IntentMicOff, domain.IntentMicOn, domain.IntentCloseDisplay:
		return intent, true
	case domain.IntentStartMetronome:
		if kind == domain.CaptureMetronomeBpm && intent.BPM > 0 {
			return intent, true
		}
	}

	switch text {
	case "stop":
		return domain.CommandIntent{Kind: domain.IntentStop}, true
	case "pause":
		return domain.CommandIntent{Kind: domain.IntentPause}, true
	case "play":
		return domain.CommandIntent{Kind: domain.IntentPlay}, true
	case "save":
		return domain.CommandIntent{Kind: domain.IntentSave}, true
	}

	return domain.CommandIntent{}, false
}
