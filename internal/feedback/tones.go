// Package feedback plays the short acknowledgment tone pairs. The tones
// are synthesized by the frontend audio context; this sink picks the pair.
package feedback

import "bandmate/internal/domain"

// Tone describes one note of an acknowledgment cue.
type Tone struct {
	FrequencyHz int `json:"frequencyHz"`
	DurationMs  int `json:"durationMs"`
}

// Notifier receives the tone pair to play.
type Notifier interface {
	PlayTones(kind domain.AckKind, tones []Tone)
}

// Acknowledger implements ports.Acknowledger with a fixed tone table:
// ascending for acceptance and mode entry, descending for rejection,
// exit, and capture timeout.
type Acknowledger struct {
	notifier Notifier
}

func New(notifier Notifier) *Acknowledger {
	return &Acknowledger{notifier: notifier}
}

var tonePairs = map[domain.AckKind][]Tone{
	domain.AckAccept: {{FrequencyHz: 660, DurationMs: 90}, {FrequencyHz: 880, DurationMs: 120}},
	domain.AckReject: {{FrequencyHz: 880, DurationMs: 90}, {FrequencyHz: 660, DurationMs: 120}},
}

func (a *Acknowledger) Acknowledge(kind domain.AckKind) {
	tones, ok := tonePairs[kind]
	if !ok {
		return
	}
	a.notifier.PlayTones(kind, tones)
}
