package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"bandmate/internal/backing"
	"bandmate/internal/bootstrap"
	"bandmate/internal/config"
	"bandmate/internal/domain"
	"bandmate/internal/feedback"
	"bandmate/internal/tabs"
	"bandmate/internal/transport"
	"bandmate/internal/usecase"
)

const (
	eventVoice     = "bandmate:voice"
	eventMode      = "bandmate:mode"
	eventMic       = "bandmate:mic"
	eventPartial   = "bandmate:partial"
	eventIntent    = "bandmate:intent"
	eventCapture   = "bandmate:capture"
	eventAck       = "bandmate:ack"
	eventMetronome = "bandmate:metronome"
	eventBacking   = "bandmate:backing"
	eventDisplay   = "bandmate:display"
	eventError     = "bandmate:error"
)

// App is the Wails application root. It implements bootstrap.UI: every
// backend event funnels through here into the frontend event bus.
type App struct {
	ctx context.Context

	controller *usecase.VoiceController
	display    *tabs.Display
	backing    *backing.Control
	auth       *transport.Authenticator
	cfg        config.Config
	bootErr    error

	partialMu       sync.Mutex
	partialText     string
	partialDebounce func(func())
}

func NewApp() *App {
	return &App{partialDebounce: debounce.New(150 * time.Millisecond)}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.EngineError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.display = services.Display
	a.backing = services.Backing
	a.auth = services.Auth
}

func (a *App) shutdown(context.Context) {
	if a.controller != nil {
		a.controller.DisableVoice()
	}
}

// EnableVoice starts listening for voice commands.
func (a *App) EnableVoice() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.EnableVoice(a.ctx); err != nil {
		a.EngineError(domain.ErrorCodeRecognizer, err.Error())
		return domain.Status{}, err
	}
	return a.controller.Status(), nil
}

// DisableVoice stops listening. The active mode, if any, keeps running.
func (a *App) DisableVoice() domain.Status {
	if a.controller == nil {
		return domain.Status{}
	}
	a.controller.DisableVoice()
	return a.controller.Status()
}

// SetSpotifyActive is set by the presentation layer while a playback
// track is showing; it gates the transport command family.
func (a *App) SetSpotifyActive(active bool) {
	if a.controller == nil {
		return
	}
	a.controller.SetTransportActive(active)
}

// SetBackendMicEnabled is the UI toggle twin of the mic voice commands.
func (a *App) SetBackendMicEnabled(enabled bool) {
	if a.controller == nil {
		return
	}
	a.controller.SetBackendMicEnabled(enabled)
}

// ShowChordDisplay opens the chord/scale display from the UI or backend
// (not voice), arming the voice-close cooldown against self-echo.
func (a *App) ShowChordDisplay(description string) {
	if a.display == nil {
		return
	}
	a.display.ShowFromBackend(description)
}

// CloseChordDisplay closes the display from the UI; no cooldown applies.
func (a *App) CloseChordDisplay() {
	if a.display == nil {
		return
	}
	a.display.Close()
}

// BeginSpotifyAuth starts the OAuth flow and returns the URL to open.
func (a *App) BeginSpotifyAuth() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	url, err := a.auth.BeginAuth()
	if err != nil {
		a.EngineError(domain.ErrorCodeTransport, err.Error())
		return "", err
	}
	return url, nil
}

// GetStatus returns the current engine status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		return domain.Status{}
	}
	return a.controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	authorized := "no"
	if a.auth != nil && a.auth.Authorized() {
		authorized = "yes"
	}
	return map[string]string{
		"provider":         "Deepgram",
		"model":            a.cfg.Deepgram.Model,
		"language":         a.cfg.Deepgram.Language,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"spotifyLinked":    authorized,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

// --- ports.EventSink ---

func (a *App) VoiceStateChanged(enabled bool) {
	a.emit(eventVoice, map[string]bool{"enabled": enabled})
}

func (a *App) ModeChanged(mode domain.ActiveMode) {
	a.emit(eventMode, map[string]string{"mode": string(mode)})
}

func (a *App) MicStateChanged(enabled bool) {
	a.emit(eventMic, map[string]bool{"enabled": enabled})
}

// PartialTranscript coalesces interim bursts so the UI repaints at most a
// few times per second instead of on every recognizer fragment.
func (a *App) PartialTranscript(text string) {
	a.partialMu.Lock()
	a.partialText = text
	a.partialMu.Unlock()

	a.partialDebounce(func() {
		a.partialMu.Lock()
		latest := a.partialText
		a.partialMu.Unlock()
		a.emit(eventPartial, map[string]string{"text": latest})
	})
}

func (a *App) CommandAccepted(intent domain.CommandIntent) {
	a.emit(eventIntent, intent)
}

func (a *App) CaptureStarted(kind domain.CaptureKind) {
	a.emit(eventCapture, map[string]string{"state": "waiting", "kind": string(kind)})
}

func (a *App) CaptureTimedOut(kind domain.CaptureKind) {
	a.emit(eventCapture, map[string]string{"state": "timeout", "kind": string(kind)})
}

func (a *App) EngineError(code domain.ErrorCode, detail string) {
	a.emit(eventError, map[string]string{"code": string(code), "detail": detail})
}

// --- ports.AssistantMic ---

// SetEnabled forwards the mic-enabled flag to the assistant session in
// the frontend.
func (a *App) SetEnabled(enabled bool) {
	a.emit(eventMic, map[string]bool{"enabled": enabled, "backend": true})
}

// --- metronome.Notifier ---

func (a *App) MetronomeBeat(beat int, bpm int) {
	a.emit(eventMetronome, map[string]int{"beat": beat, "bpm": bpm})
}

func (a *App) MetronomeState(running bool, paused bool, bpm int) {
	a.emit(eventMetronome, map[string]any{"running": running, "paused": paused, "bpm": bpm})
}

// --- backing.Notifier ---

func (a *App) BackingGenerating(description string) {
	a.emit(eventBacking, map[string]string{"state": "generating", "description": description})
}

func (a *App) BackingReady(track backing.Track) {
	a.emit(eventBacking, map[string]any{"state": "ready", "track": track})
}

func (a *App) BackingPlayback(playing bool) {
	a.emit(eventBacking, map[string]any{"state": "playback", "playing": playing})
}

func (a *App) BackingStopped() {
	a.emit(eventBacking, map[string]string{"state": "stopped"})
}

// --- tabs.Notifier ---

func (a *App) DisplayShown(description string) {
	a.emit(eventDisplay, map[string]string{"state": "shown", "description": description})
}

func (a *App) DisplayClosed() {
	a.emit(eventDisplay, map[string]string{"state": "closed"})
}

// --- feedback.Notifier ---

func (a *App) PlayTones(kind domain.AckKind, tones []feedback.Tone) {
	a.emit(eventAck, map[string]any{"kind": string(kind), "tones": tones})
}
