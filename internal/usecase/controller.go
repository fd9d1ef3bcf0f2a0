package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bandmate/internal/classify"
	"bandmate/internal/domain"
	"bandmate/internal/ports"
)

// Config controls engine timing and the recognizer pipeline.
type Config struct {
	Audio          ports.AudioConfig
	Streaming      ports.StreamingConfig
	ChunkSize      int
	Cooldowns      CooldownConfig
	CaptureTimeout time.Duration
	RestartBackoff time.Duration
}

// Sinks are the per-mode collaborators the engine dispatches to. They are
// expected to be idempotent and fast; the engine applies no timeout or
// retry policy.
type Sinks struct {
	Mic       ports.AssistantMic
	Metronome ports.MetronomeControl
	Backing   ports.BackingTrackControl
	Display   ports.DisplayControl
	Transport ports.TransportControl
}

// VoiceController consumes the transcript stream and arbitrates it into
// mode transitions and sink dispatches. One mutex makes every transcript
// event and timer firing an atomic turn, so ActiveMode, the pending
// capture, and the cooldown clock never see concurrent mutation.
type VoiceController struct {
	audio    ports.AudioCapture
	provider ports.RecognitionProvider
	sinks    Sinks
	ack      ports.Acknowledger
	events   ports.EventSink
	cfg      Config
	log      *slog.Logger
	now      func() time.Time

	mu              sync.Mutex
	voiceEnabled    bool
	transportActive bool
	arbiter         *modeArbiter
	guard           *cooldownGuard
	capture         *pendingCapture
	captureGen      uint64
	captureTimeout  time.Duration
	runCancel       context.CancelFunc
	runDone         chan struct{}
}

func NewVoiceController(
	audio ports.AudioCapture,
	provider ports.RecognitionProvider,
	sinks Sinks,
	ack ports.Acknowledger,
	events ports.EventSink,
	cfg Config,
) *VoiceController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = DefaultCaptureTimeout
	}
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = 500 * time.Millisecond
	}
	return &VoiceController{
		audio:          audio,
		provider:       provider,
		sinks:          sinks,
		ack:            ack,
		events:         events,
		cfg:            cfg,
		log:            slog.Default(),
		now:            time.Now,
		arbiter:        newModeArbiter(sinks.Mic, events),
		guard:          newCooldownGuard(cfg.Cooldowns),
		captureTimeout: cfg.CaptureTimeout,
	}
}

// EnableVoice starts the recognizer pipeline. Enabling an already-running
// engine is ignored rather than treated as fatal.
func (c *VoiceController) EnableVoice(ctx context.Context) error {
	c.mu.Lock()
	if c.voiceEnabled {
		c.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.voiceEnabled = true
	c.runCancel = cancel
	c.runDone = done
	c.mu.Unlock()

	c.events.VoiceStateChanged(true)
	go c.superviseRecognizer(runCtx, done)
	return nil
}

// DisableVoice stops the recognizer, cancels any pending capture timer,
// and zeroes the cooldown clock. An active mode persists until explicitly
// stopped.
func (c *VoiceController) DisableVoice() {
	c.mu.Lock()
	if !c.voiceEnabled {
		c.mu.Unlock()
		return
	}
	c.voiceEnabled = false
	cancel := c.runCancel
	done := c.runDone
	c.runCancel = nil
	c.runDone = nil
	c.cancelCaptureLocked()
	c.guard.reset()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	c.events.VoiceStateChanged(false)
}

// SetTransportActive gates the transport command family. Set by the
// presentation layer while a track is showing.
func (c *VoiceController) SetTransportActive(active bool) {
	c.mu.Lock()
	c.transportActive = active
	c.mu.Unlock()
}

// SetBackendMicEnabled is the UI-toggle twin of the MicOn/MicOff voice
// commands and follows the same transitions.
func (c *VoiceController) SetBackendMicEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enabled {
		c.arbiter.enterBackendMic()
		return
	}
	if c.arbiter.activeMode() == domain.ModeBackendMic {
		c.arbiter.exitToNone(true)
		return
	}
	c.arbiter.setMicEnabled(false)
}

// NotifyDisplayOpenedByBackend starts the display-close cooldown. Voice
// close requests are suppressed while the backend's own announcement of
// the display may still be echoing into the microphone.
func (c *VoiceController) NotifyDisplayOpenedByBackend() {
	c.mu.Lock()
	c.guard.markDisplayOpened(c.now())
	c.mu.Unlock()
}

// Status returns a snapshot for the UI.
func (c *VoiceController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := domain.Status{
		VoiceEnabled:    c.voiceEnabled,
		Mode:            c.arbiter.activeMode(),
		MicEnabled:      c.arbiter.micEnabled,
		TransportActive: c.transportActive,
	}
	if c.capture != nil {
		status.PendingCapture = c.capture.kind
	}
	return status
}

// HandleTranscript processes one recognizer event to completion.
func (c *VoiceController) HandleTranscript(ev domain.TranscriptEvent) {
	text := classify.Normalize(ev.Text)
	if text == "" {
		return
	}
	now := ev.ReceivedAt
	if now.IsZero() {
		now = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Kind == domain.TranscriptKindFinal {
		c.handleFinal(text, now)
		return
	}
	c.handleInterim(text, now)
}

func (c *VoiceController) classifyContext() classify.Context {
	ctx := classify.Context{
		ActiveMode:      c.arbiter.activeMode(),
		TransportActive: c.transportActive,
	}
	if c.capture != nil {
		ctx.PendingCapture = c.capture.kind
	}
	return ctx
}

func (c *VoiceController) handleFinal(text string, now time.Time) {
	if c.capture != nil {
		c.resolveCapture(text, now)
		return
	}
	intent := classify.Classify(text, c.classifyContext())
	c.dispatch(intent, now, false)
}

// handleInterim lets interim results trigger only the lowest-risk,
// idempotent subset: mic on/off and, when a mode is active, that mode's
// stop/pause/play. Repeats inside the debounce window are dropped.
func (c *VoiceController) handleInterim(text string, now time.Time) {
	if c.capture != nil {
		return
	}
	intent := classify.Classify(text, c.classifyContext())
	if !interimEligible(intent, c.arbiter.activeMode()) {
		return
	}
	if c.guard.interimDuplicate(text, now) {
		return
	}
	c.dispatch(intent, now, false)
}

func interimEligible(intent domain.CommandIntent, mode domain.ActiveMode) bool {
	switch intent.Kind {
	case domain.IntentMicOn, domain.IntentMicOff:
		return true
	case domain.IntentStop, domain.IntentPause, domain.IntentPlay:
		return mode == domain.ModeMetronome || mode == domain.ModeBackingTrack
	}
	return false
}

// resolveCapture handles a final transcript arriving while a capture is
// pending: overrides first, otherwise the raw text becomes the payload of
// the original intent. Payload dispatch bypasses the global cooldown; it
// completes the command the cooldown was armed for.
func (c *VoiceController) resolveCapture(text string, now time.Time) {
	kind := c.capture.kind

	if intent, ok := captureOverride(text, kind); ok {
		c.cancelCaptureLocked()
		c.dispatch(intent, now, true)
		return
	}

	switch kind {
	case domain.CaptureMetronomeBpm:
		bpm, ok := classify.ParseBPM(text)
		if !ok {
			// Only the numeral form parses. Reject the payload but keep
			// waiting; the user can repeat until the deadline fires.
			c.ack.Acknowledge(domain.AckReject)
			return
		}
		c.cancelCaptureLocked()
		if c.arbiter.activeMode() == domain.ModeMetronome {
			c.dispatch(domain.CommandIntent{Kind: domain.IntentSetBpm, BPM: bpm}, now, true)
		} else {
			c.dispatch(domain.CommandIntent{Kind: domain.IntentStartMetronome, BPM: bpm}, now, true)
		}
	case domain.CaptureBackingDescription:
		c.cancelCaptureLocked()
		c.dispatch(domain.CommandIntent{Kind: domain.IntentDescribeBacking, Text: text}, now, true)
	case domain.CaptureDisplayDescription:
		c.cancelCaptureLocked()
		c.dispatch(domain.CommandIntent{Kind: domain.IntentShowDisplay, Text: text}, now, true)
	}
}

// dispatch applies eligibility and cooldown rules, then invokes the sink.
// fromCapture skips the global dispatch cooldown so a capture payload is
// never absorbed as a duplicate of its own wake phrase.
func (c *VoiceController) dispatch(intent domain.CommandIntent, now time.Time, fromCapture bool) {
	if intent.Kind == domain.IntentUnrecognized {
		return
	}

	// MicOff always wins: it bypasses every cooldown so the user can
	// silence the system at any time.
	if intent.Kind == domain.IntentMicOff {
		c.cancelCaptureLocked()
		c.stopActiveSink()
		c.arbiter.exitToNone(true)
		c.accept(intent, now, domain.AckReject)
		return
	}

	if !fromCapture && c.guard.dispatchSuppressed(now) {
		return
	}

	mode := c.arbiter.activeMode()

	switch intent.Kind {
	case domain.IntentMicOn:
		if !c.arbiter.enterBackendMic() {
			return
		}
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentStop, domain.IntentPause:
		if mode != domain.ModeMetronome && mode != domain.ModeBackingTrack {
			return
		}
		if c.guard.modeStopSuppressed(mode, now) {
			return
		}
		if mode == domain.ModeMetronome {
			if intent.Kind == domain.IntentPause {
				c.sinks.Metronome.Pause()
			} else {
				c.sinks.Metronome.Stop()
			}
		} else {
			if intent.Kind == domain.IntentPause {
				c.sinks.Backing.Pause()
			} else {
				c.sinks.Backing.Stop()
			}
		}
		c.arbiter.exitToNone(false)
		c.accept(intent, now, domain.AckReject)

	case domain.IntentPlay:
		switch mode {
		case domain.ModeMetronome:
			c.sinks.Metronome.Play()
		case domain.ModeBackingTrack:
			c.sinks.Backing.Resume()
		default:
			return
		}
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentSave:
		if mode != domain.ModeBackingTrack {
			return
		}
		c.sinks.Backing.Save()
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentStartMetronome:
		if intent.BPM == 0 {
			if !c.arbiter.canEnterExclusive() {
				return
			}
			c.guard.markDispatch(now)
			c.beginCapture(domain.CaptureMetronomeBpm, now)
			return
		}
		if mode == domain.ModeMetronome {
			c.sinks.Metronome.SetBpm(intent.BPM)
			c.accept(intent, now, domain.AckAccept)
			return
		}
		if !c.arbiter.enterExclusive(domain.ModeMetronome) {
			return
		}
		c.guard.markModeStart(domain.ModeMetronome, now)
		c.sinks.Metronome.Start(intent.BPM)
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentSetBpm:
		if mode != domain.ModeMetronome {
			return
		}
		c.sinks.Metronome.SetBpm(intent.BPM)
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentDescribeBacking:
		if !c.arbiter.canEnterExclusive() {
			return
		}
		if intent.Text == "" {
			c.guard.markDispatch(now)
			c.beginCapture(domain.CaptureBackingDescription, now)
			return
		}
		c.arbiter.enterExclusive(domain.ModeBackingTrack)
		c.guard.markModeStart(domain.ModeBackingTrack, now)
		c.sinks.Backing.Describe(intent.Text)
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentShowDisplay:
		if intent.Text == "" {
			c.guard.markDispatch(now)
			c.beginCapture(domain.CaptureDisplayDescription, now)
			return
		}
		c.sinks.Display.Show(intent.Text)
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentCloseDisplay:
		if c.guard.displayCloseSuppressed(now) {
			return
		}
		c.sinks.Display.Close()
		c.accept(intent, now, domain.AckReject)

	case domain.IntentTransportAction:
		switch intent.Transport {
		case domain.TransportPause:
			c.sinks.Transport.Pause()
		case domain.TransportPlay:
			c.sinks.Transport.Play()
		case domain.TransportStop:
			c.sinks.Transport.Stop()
		case domain.TransportRestart:
			c.sinks.Transport.Restart()
		case domain.TransportSkip:
			c.sinks.Transport.Skip()
		default:
			return
		}
		c.accept(intent, now, domain.AckAccept)

	case domain.IntentTransportSeek:
		c.sinks.Transport.Seek(intent.SeekSeconds, intent.SeekDirection)
		c.accept(intent, now, domain.AckAccept)
	}
}

// stopActiveSink silences whichever exclusive mode is running before a
// MicOff preemption returns the engine to None.
func (c *VoiceController) stopActiveSink() {
	switch c.arbiter.activeMode() {
	case domain.ModeMetronome:
		c.sinks.Metronome.Stop()
	case domain.ModeBackingTrack:
		c.sinks.Backing.Stop()
	}
}

func (c *VoiceController) accept(intent domain.CommandIntent, now time.Time, ack domain.AckKind) {
	c.guard.markDispatch(now)
	c.ack.Acknowledge(ack)
	c.events.CommandAccepted(intent)
}
