package bootstrap

import (
	"testing"

	"bandmate/internal/backing"
	"bandmate/internal/domain"
	"bandmate/internal/feedback"
)

func TestBuildSuccess(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	services, err := Build(noopUI{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Controller == nil {
		t.Fatalf("expected controller")
	}
	if services.Display == nil || services.Backing == nil || services.Metronome == nil {
		t.Fatalf("expected sinks to be wired: %+v", services)
	}
	if services.Auth == nil {
		t.Fatalf("expected authenticator")
	}
}

func TestBuildDisplayFeedsEngine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEEPGRAM_API_KEY", "test-key")

	services, err := Build(noopUI{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// A backend-initiated open must not panic and must leave the
	// display reporting open.
	services.Display.ShowFromBackend("G major chords")
	if !services.Display.Open() {
		t.Fatalf("expected display open after backend show")
	}
}

type noopUI struct{}

func (noopUI) VoiceStateChanged(bool)                    {}
func (noopUI) ModeChanged(domain.ActiveMode)             {}
func (noopUI) MicStateChanged(bool)                      {}
func (noopUI) PartialTranscript(string)                  {}
func (noopUI) CommandAccepted(domain.CommandIntent)      {}
func (noopUI) CaptureStarted(domain.CaptureKind)         {}
func (noopUI) CaptureTimedOut(domain.CaptureKind)        {}
func (noopUI) EngineError(domain.ErrorCode, string)      {}
func (noopUI) SetEnabled(bool)                           {}
func (noopUI) MetronomeBeat(int, int)                    {}
func (noopUI) MetronomeState(bool, bool, int)            {}
func (noopUI) BackingGenerating(string)                  {}
func (noopUI) BackingReady(backing.Track)                {}
func (noopUI) BackingPlayback(bool)                      {}
func (noopUI) BackingStopped()                           {}
func (noopUI) DisplayShown(string)                       {}
func (noopUI) DisplayClosed()                            {}
func (noopUI) PlayTones(domain.AckKind, []feedback.Tone) {}
