package classify

import (
	"regexp"
	"strconv"

	"bandmate/internal/domain"
)

var (
	bpmRe     = regexp.MustCompile(`\b(\d{1,4})(?:\s*bpm)?\b`)
	bareBpmRe = regexp.MustCompile(`^(\d{1,4})(?:\s*bpm)?$`)
	seekRe    = regexp.MustCompile(`(\d{1,4})\s*(seconds?|secs?|minutes?|mins?)\b`)
)

// ParseBPM extracts the first numeral in text and range-checks it against
// [MinBPM, MaxBPM]. Only digit forms are accepted; spelled-out numbers
// never parse. Used directly by follow-up capture resolution.
func ParseBPM(text string) (int, bool) {
	return parseBPM(Normalize(text))
}

func parseBPM(text string) (int, bool) {
	m := bpmRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	bpm, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if bpm < domain.MinBPM || bpm > domain.MaxBPM {
		return 0, false
	}
	return bpm, true
}

// parseSeekSeconds reads digits adjacent to a second/minute unit, converts
// minutes to seconds, and caps the result at MaxSeekSeconds.
func parseSeekSeconds(text string) (int, bool) {
	m := seekRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return 0, false
	}
	if m[2][0] == 'm' {
		value *= 60
	}
	if value > domain.MaxSeekSeconds {
		value = domain.MaxSeekSeconds
	}
	return value, true
}
