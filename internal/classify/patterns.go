package classify

import (
	"regexp"
	"strings"

	"bandmate/internal/domain"
)

// Wake phrases and fixed command vocabulary. Mic toggles match exactly or
// as a phrase at the end of the utterance; that stricter rule resists
// false positives from assistant speech echoed back into the microphone.
const (
	phraseMicOn        = "microphone on"
	phraseMicOff       = "microphone off"
	phraseCloseDisplay = "close display"
	wakeShowDisplay    = "show me"
	wakeBackingTrack   = "backing track"
	wakeMetronome      = "metronome"
)

var (
	metronomeRe = regexp.MustCompile(`^(?:start (?:the )?)?metronome\b\s*(.*)$`)
	rewindRe    = regexp.MustCompile(`^rewind(?:\s+(.+))?$`)
	forwardRe   = regexp.MustCompile(`^(?:fast forward|forward)(?:\s+(.+))?$`)
)

func matchExactOrSuffix(text, phrase string) bool {
	return text == phrase || strings.HasSuffix(text, " "+phrase)
}

func matchMicToggle(text string, _ Context) (domain.CommandIntent, bool) {
	if matchExactOrSuffix(text, phraseMicOn) {
		return domain.CommandIntent{Kind: domain.IntentMicOn}, true
	}
	if matchExactOrSuffix(text, phraseMicOff) {
		return domain.CommandIntent{Kind: domain.IntentMicOff}, true
	}
	return domain.CommandIntent{}, false
}

func matchCloseDisplay(text string, _ Context) (domain.CommandIntent, bool) {
	if matchExactOrSuffix(text, phraseCloseDisplay) {
		return domain.CommandIntent{Kind: domain.IntentCloseDisplay}, true
	}
	return domain.CommandIntent{}, false
}

// matchShowDisplay accepts the wake phrase with an inline description
// ("show me a c major scale") or bare, deferring to follow-up capture.
func matchShowDisplay(text string, _ Context) (domain.CommandIntent, bool) {
	if text == wakeShowDisplay {
		return domain.CommandIntent{Kind: domain.IntentShowDisplay}, true
	}
	if rest, ok := strings.CutPrefix(text, wakeShowDisplay+" "); ok {
		return domain.CommandIntent{Kind: domain.IntentShowDisplay, Text: rest}, true
	}
	return domain.CommandIntent{}, false
}

func matchBackingTrack(text string, _ Context) (domain.CommandIntent, bool) {
	if text == wakeBackingTrack {
		return domain.CommandIntent{Kind: domain.IntentDescribeBacking}, true
	}
	if rest, ok := strings.CutPrefix(text, wakeBackingTrack+" "); ok {
		return domain.CommandIntent{Kind: domain.IntentDescribeBacking, Text: rest}, true
	}
	return domain.CommandIntent{}, false
}

// Backing-track sub-actions are only reachable while that mode is active;
// eligibility is enforced by the pattern table.
func matchBackingAction(text string, _ Context) (domain.CommandIntent, bool) {
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

func matchMetronomeAction(text string, _ Context) (domain.CommandIntent, bool) {
	switch text {
	case "stop":
		return domain.CommandIntent{Kind: domain.IntentStop}, true
	case "pause":
		return domain.CommandIntent{Kind: domain.IntentPause}, true
	case "play":
		return domain.CommandIntent{Kind: domain.IntentPlay}, true
	}
	return domain.CommandIntent{}, false
}

// matchMetronome accepts the wake word bare (defer to capture) or with an
// inline numeric BPM. An inline out-of-range number is rejected outright
// rather than clamped.
func matchMetronome(text string, _ Context) (domain.CommandIntent, bool) {
	m := metronomeRe.FindStringSubmatch(text)
	if m == nil {
		return domain.CommandIntent{}, false
	}
	rest := strings.TrimSpace(m[1])
	if rest == "" {
		return domain.CommandIntent{Kind: domain.IntentStartMetronome}, true
	}
	bpm, ok := parseBPM(rest)
	if !ok {
		return domain.CommandIntent{Kind: domain.IntentUnrecognized}, true
	}
	return domain.CommandIntent{Kind: domain.IntentStartMetronome, BPM: bpm}, true
}

// matchBareBpm accepts a standalone number while the metronome is running.
func matchBareBpm(text string, _ Context) (domain.CommandIntent, bool) {
	if !bareBpmRe.MatchString(text) {
		return domain.CommandIntent{}, false
	}
	bpm, ok := parseBPM(text)
	if !ok {
		return domain.CommandIntent{Kind: domain.IntentUnrecognized}, true
	}
	return domain.CommandIntent{Kind: domain.IntentSetBpm, BPM: bpm}, true
}

func matchTransport(text string, _ Context) (domain.CommandIntent, bool) {
	switch text {
	case "pause":
		return domain.CommandIntent{Kind: domain.IntentTransportAction, Transport: domain.TransportPause}, true
	case "play":
		return domain.CommandIntent{Kind: domain.IntentTransportAction, Transport: domain.TransportPlay}, true
	case "stop":
		return domain.CommandIntent{Kind: domain.IntentTransportAction, Transport: domain.TransportStop}, true
	case "restart", "start over":
		return domain.CommandIntent{Kind: domain.IntentTransportAction, Transport: domain.TransportRestart}, true
	case "skip", "next":
		return domain.CommandIntent{Kind: domain.IntentTransportAction, Transport: domain.TransportSkip}, true
	}

	if m := rewindRe.FindStringSubmatch(text); m != nil {
		return matchSeek(m[1], domain.SeekBack)
	}
	if m := forwardRe.FindStringSubmatch(text); m != nil {
		return matchSeek(m[1], domain.SeekForward)
	}
	return domain.CommandIntent{}, false
}

func matchSeek(rest string, direction domain.SeekDirection) (domain.CommandIntent, bool) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return domain.CommandIntent{
			Kind:          domain.IntentTransportSeek,
			SeekSeconds:   domain.DefaultSeekSeconds,
			SeekDirection: direction,
		}, true
	}
	seconds, ok := parseSeekSeconds(rest)
	if !ok {
		return domain.CommandIntent{}, false
	}
	return domain.CommandIntent{
		Kind:          domain.IntentTransportSeek,
		SeekSeconds:   seconds,
		SeekDirection: direction,
	}, true
}
