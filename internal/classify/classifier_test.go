package classify

import (
	"fmt"
	"testing"

	"bandmate/internal/domain"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Microphone   ON  ", "microphone on"},
		{"Metronome\t120", "metronome 120"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyMicToggle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want domain.IntentKind
	}{
		{"microphone on", domain.IntentMicOn},
		{"Microphone ON", domain.IntentMicOn},
		{"hey turn the microphone on", domain.IntentMicOn},
		{"microphone off", domain.IntentMicOff},
		{"please microphone off", domain.IntentMicOff},
		// The phrase must end the utterance, not merely appear in it.
		{"microphone on please", domain.IntentUnrecognized},
		{"microphone off now", domain.IntentUnrecognized},
		// Substring of a longer word does not count as a suffix.
		{"xmicrophone on", domain.IntentUnrecognized},
	}
	for _, tc := range cases {
		got := Classify(tc.text, Context{})
		if got.Kind != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.text, got.Kind, tc.want)
		}
	}
}

func TestClassifyMetronomeInline(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text    string
		want    domain.IntentKind
		wantBPM int
	}{
		{"metronome", domain.IntentStartMetronome, 0},
		{"start metronome", domain.IntentStartMetronome, 0},
		{"start the metronome", domain.IntentStartMetronome, 0},
		{"metronome 120", domain.IntentStartMetronome, 120},
		{"metronome at 90 bpm", domain.IntentStartMetronome, 90},
		{"start the metronome 200bpm", domain.IntentStartMetronome, 200},
		// Out-of-range tempo is rejected, never clamped.
		{"metronome 39", domain.IntentUnrecognized, 0},
		{"metronome 241", domain.IntentUnrecognized, 0},
		{"metronome 0", domain.IntentUnrecognized, 0},
		// Spelled-out numbers never parse.
		{"metronome one twenty", domain.IntentUnrecognized, 0},
		{"metronomes 120", domain.IntentUnrecognized, 0},
	}
	for _, tc := range cases {
		got := Classify(tc.text, Context{})
		if got.Kind != tc.want || got.BPM != tc.wantBPM {
			t.Fatalf("Classify(%q) = %v/%d, want %v/%d", tc.text, got.Kind, got.BPM, tc.want, tc.wantBPM)
		}
	}
}

func TestClassifyBPMRangeBounds(t *testing.T) {
	t.Parallel()

	for bpm := domain.MinBPM - 5; bpm <= domain.MaxBPM+5; bpm++ {
		text := fmt.Sprintf("metronome %d", bpm)
		got := Classify(text, Context{})
		inRange := bpm >= domain.MinBPM && bpm <= domain.MaxBPM
		if inRange {
			if got.Kind != domain.IntentStartMetronome || got.BPM != bpm {
				t.Fatalf("Classify(%q) = %v/%d, want start/%d", text, got.Kind, got.BPM, bpm)
			}
		} else if got.Kind != domain.IntentUnrecognized {
			t.Fatalf("Classify(%q) = %v, want unrecognized", text, got.Kind)
		}
	}
}

func TestClassifyBareBPMRequiresMetronomeMode(t *testing.T) {
	t.Parallel()

	got := Classify("100", Context{ActiveMode: domain.ModeMetronome})
	if got.Kind != domain.IntentSetBpm || got.BPM != 100 {
		t.Fatalf("bare number in metronome mode = %v/%d, want set_bpm/100", got.Kind, got.BPM)
	}

	got = Classify("100 bpm", Context{ActiveMode: domain.ModeMetronome})
	if got.Kind != domain.IntentSetBpm || got.BPM != 100 {
		t.Fatalf("bare bpm in metronome mode = %v/%d, want set_bpm/100", got.Kind, got.BPM)
	}

	got = Classify("100", Context{})
	if got.Kind != domain.IntentUnrecognized {
		t.Fatalf("bare number outside metronome mode = %v, want unrecognized", got.Kind)
	}

	got = Classify("300", Context{ActiveMode: domain.ModeMetronome})
	if got.Kind != domain.IntentUnrecognized {
		t.Fatalf("out-of-range bare number = %v, want unrecognized", got.Kind)
	}
}

func TestClassifyModeActions(t *testing.T) {
	t.Parallel()

	// Mode sub-actions only resolve while their mode is active.
	for _, text := range []string{"stop", "pause", "play"} {
		if got := Classify(text, Context{}); got.Kind != domain.IntentUnrecognized {
			t.Fatalf("Classify(%q) with no mode = %v, want unrecognized", text, got.Kind)
		}
	}

	metCtx := Context{ActiveMode: domain.ModeMetronome}
	cases := map[string]domain.IntentKind{
		"stop":  domain.IntentStop,
		"pause": domain.IntentPause,
		"play":  domain.IntentPlay,
	}
	for text, want := range cases {
		if got := Classify(text, metCtx); got.Kind != want {
			t.Fatalf("Classify(%q) in metronome mode = %v, want %v", text, got.Kind, want)
		}
	}
	if got := Classify("save", metCtx); got.Kind != domain.IntentUnrecognized {
		t.Fatalf("save in metronome mode = %v, want unrecognized", got.Kind)
	}

	backCtx := Context{ActiveMode: domain.ModeBackingTrack}
	if got := Classify("save", backCtx); got.Kind != domain.IntentSave {
		t.Fatalf("save in backing mode = %v, want save", got.Kind)
	}
}

func TestClassifyWakePhrases(t *testing.T) {
	t.Parallel()

	got := Classify("backing track", Context{})
	if got.Kind != domain.IntentDescribeBacking || got.Text != "" {
		t.Fatalf("bare backing wake = %v/%q, want describe with empty text", got.Kind, got.Text)
	}

	got = Classify("backing track slow blues in e", Context{})
	if got.Kind != domain.IntentDescribeBacking || got.Text != "slow blues in e" {
		t.Fatalf("inline backing = %v/%q", got.Kind, got.Text)
	}

	got = Classify("show me", Context{})
	if got.Kind != domain.IntentShowDisplay || got.Text != "" {
		t.Fatalf("bare show wake = %v/%q, want show with empty text", got.Kind, got.Text)
	}

	got = Classify("show me a c major scale", Context{})
	if got.Kind != domain.IntentShowDisplay || got.Text != "a c major scale" {
		t.Fatalf("inline show = %v/%q", got.Kind, got.Text)
	}

	got = Classify("close display", Context{})
	if got.Kind != domain.IntentCloseDisplay {
		t.Fatalf("close display = %v", got.Kind)
	}
	got = Classify("ok close display", Context{})
	if got.Kind != domain.IntentCloseDisplay {
		t.Fatalf("suffixed close display = %v", got.Kind)
	}
}

func TestClassifyTransportPriority(t *testing.T) {
	t.Parallel()

	// With a track active, the overlapping vocabulary routes to transport
	// even while an exclusive mode is running.
	ctx := Context{TransportActive: true, ActiveMode: domain.ModeMetronome}
	got := Classify("pause", ctx)
	if got.Kind != domain.IntentTransportAction || got.Transport != domain.TransportPause {
		t.Fatalf("pause with transport active = %v/%v", got.Kind, got.Transport)
	}

	got = Classify("pause", Context{TransportActive: false, ActiveMode: domain.ModeMetronome})
	if got.Kind != domain.IntentPause {
		t.Fatalf("pause without transport = %v, want metronome pause", got.Kind)
	}
}

func TestClassifyTransportVocabulary(t *testing.T) {
	t.Parallel()

	ctx := Context{TransportActive: true}
	cases := []struct {
		text string
		want domain.TransportActionKind
	}{
		{"play", domain.TransportPlay},
		{"stop", domain.TransportStop},
		{"restart", domain.TransportRestart},
		{"start over", domain.TransportRestart},
		{"skip", domain.TransportSkip},
		{"next", domain.TransportSkip},
	}
	for _, tc := range cases {
		got := Classify(tc.text, ctx)
		if got.Kind != domain.IntentTransportAction || got.Transport != tc.want {
			t.Fatalf("Classify(%q) = %v/%v, want transport/%v", tc.text, got.Kind, got.Transport, tc.want)
		}
	}
}

func TestClassifyTransportSeek(t *testing.T) {
	t.Parallel()

	ctx := Context{TransportActive: true}
	cases := []struct {
		text    string
		dir     domain.SeekDirection
		seconds int
		want    domain.IntentKind
	}{
		{"rewind", domain.SeekBack, domain.DefaultSeekSeconds, domain.IntentTransportSeek},
		{"rewind 30 seconds", domain.SeekBack, 30, domain.IntentTransportSeek},
		{"rewind 2 minutes", domain.SeekBack, 120, domain.IntentTransportSeek},
		{"fast forward", domain.SeekForward, domain.DefaultSeekSeconds, domain.IntentTransportSeek},
		{"forward 10 secs", domain.SeekForward, 10, domain.IntentTransportSeek},
		{"fast forward 1 min", domain.SeekForward, 60, domain.IntentTransportSeek},
		// Values above the cap clamp to one hour.
		{"forward 5000 seconds", domain.SeekForward, domain.MaxSeekSeconds, domain.IntentTransportSeek},
		{"rewind 100 minutes", domain.SeekBack, domain.MaxSeekSeconds, domain.IntentTransportSeek},
	}
	for _, tc := range cases {
		got := Classify(tc.text, ctx)
		if got.Kind != tc.want || got.SeekDirection != tc.dir || got.SeekSeconds != tc.seconds {
			t.Fatalf("Classify(%q) = %v/%v/%d, want %v/%v/%d",
				tc.text, got.Kind, got.SeekDirection, got.SeekSeconds, tc.want, tc.dir, tc.seconds)
		}
	}

	// Unparseable trailing text does not fall back to a default seek.
	got := Classify("rewind a bit", ctx)
	if got.Kind != domain.IntentUnrecognized {
		t.Fatalf("rewind with junk = %v, want unrecognized", got.Kind)
	}

	// No transport, no seek vocabulary.
	got = Classify("rewind", Context{})
	if got.Kind != domain.IntentUnrecognized {
		t.Fatalf("rewind without transport = %v, want unrecognized", got.Kind)
	}
}

func TestParseBPM(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"120", 120, true},
		{"120 bpm", 120, true},
		{"set it to 90", 90, true},
		{"Maybe 200 BPM", 200, true},
		{"40", domain.MinBPM, true},
		{"240", domain.MaxBPM, true},
		{"39", 0, false},
		{"241", 0, false},
		{"one hundred", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseBPM(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseBPM(%q) = %d/%v, want %d/%v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}
