package ports

import (
	"context"
	"io"

	"bandmate/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active recognizer session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// RecognitionProvider starts streaming recognition sessions.
type RecognitionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// AssistantMic routes the microphone-enabled flag to the assistant backend.
type AssistantMic interface {
	SetEnabled(enabled bool)
}

// MetronomeControl drives the metronome sink. Implementations clamp BPM.
type MetronomeControl interface {
	Start(bpm int)
	Stop()
	Pause()
	Play()
	SetBpm(bpm int)
}

// BackingTrackControl drives backing-track generation and playback.
type BackingTrackControl interface {
	Describe(text string)
	Pause()
	Resume()
	Save()
	Stop()
}

// DisplayControl drives the chord/scale display surface.
type DisplayControl interface {
	Show(text string)
	Close()
}

// TransportControl drives the external music-playback transport.
type TransportControl interface {
	Pause()
	Play()
	Stop()
	Restart()
	Skip()
	Seek(deltaSeconds int, direction domain.SeekDirection)
}

// Acknowledger plays a short tone pair confirming command handling.
type Acknowledger interface {
	Acknowledge(kind domain.AckKind)
}

// EventSink emits engine state and events to the UI.
type EventSink interface {
	VoiceStateChanged(enabled bool)
	ModeChanged(mode domain.ActiveMode)
	MicStateChanged(enabled bool)
	PartialTranscript(text string)
	CommandAccepted(intent domain.CommandIntent)
	CaptureStarted(kind domain.CaptureKind)
	CaptureTimedOut(kind domain.CaptureKind)
	EngineError(code domain.ErrorCode, detail string)
}
