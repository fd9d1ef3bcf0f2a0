package bootstrap

import (
	"bandmate/internal/audio"
	"bandmate/internal/backing"
	"bandmate/internal/config"
	"bandmate/internal/feedback"
	"bandmate/internal/metronome"
	"bandmate/internal/ports"
	"bandmate/internal/providers/deepgram"
	"bandmate/internal/tabs"
	"bandmate/internal/transport"
	"bandmate/internal/usecase"
)

// UI aggregates everything the backend emits toward the frontend. The
// Wails App implements all of it.
type UI interface {
	ports.EventSink
	ports.AssistantMic
	metronome.Notifier
	backing.Notifier
	tabs.Notifier
	transport.Notifier
	feedback.Notifier
}

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.VoiceController
	Display    *tabs.Display
	Backing    *backing.Control
	Metronome  *metronome.Metronome
	Auth       *transport.Authenticator
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(ui UI) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	met := metronome.New(ui)
	back := backing.NewControl(
		backing.NewClient(backing.ClientConfig{
			APIBaseURL: cfg.Backing.APIBaseURL,
			APIKey:     cfg.Backing.APIKey,
		}),
		ui,
		cfg.SaveDir,
	)
	auth := transport.NewAuthenticator(transport.AuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		LoopbackPort: cfg.Spotify.LoopbackPort,
	}, nil)
	player := transport.NewClient(cfg.Spotify.APIBaseURL, auth, ui)

	var controller *usecase.VoiceController
	display := tabs.New(ui, func() {
		if controller != nil {
			controller.NotifyDisplayOpenedByBackend()
		}
	})

	controller = usecase.NewVoiceController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		}),
		usecase.Sinks{
			Mic:       ui,
			Metronome: met,
			Backing:   back,
			Display:   display,
			Transport: player,
		},
		feedback.New(ui),
		ui,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize: cfg.Audio.ChunkSize,
			Cooldowns: usecase.CooldownConfig{
				Dispatch:     cfg.Engine.DispatchCooldown,
				Interim:      cfg.Engine.InterimDebounce,
				ModeStart:    cfg.Engine.ModeStartCooldown,
				DisplayClose: cfg.Engine.DisplayCloseCooldown,
			},
			CaptureTimeout: cfg.Engine.CaptureTimeout,
			RestartBackoff: cfg.Engine.RestartBackoff,
		},
	)

	return Services{
		Controller: controller,
		Display:    display,
		Backing:    back,
		Metronome:  met,
		Auth:       auth,
		Config:     cfg,
	}, nil
}
