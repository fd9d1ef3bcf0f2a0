// Package classify turns normalized transcript text into command intents.
//
// Classification is priority-ordered and short-circuits on the first
// matching pattern family. The classifier is pure: all state it needs
// (active mode, transport flag, pending capture) arrives in Context.
package classify

import (
	"strings"

	"bandmate/internal/domain"
)

// Context carries the engine state a classification decision depends on.
type Context struct {
	ActiveMode      domain.ActiveMode
	TransportActive bool
	PendingCapture  domain.CaptureKind
}

type pattern struct {
	eligible func(Context) bool
	match    func(text string, ctx Context) (domain.CommandIntent, bool)
}

// Normalize lowers, trims, and collapses internal whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Classify tests normalized text against the pattern table in priority
// order. Unmatched text yields IntentUnrecognized.
func Classify(text string, ctx Context) domain.CommandIntent {
	text = Normalize(text)
	if text == "" {
		return domain.CommandIntent{Kind: domain.IntentUnrecognized}
	}

	for _, p := range patternTable {
		if p.eligible != nil && !p.eligible(ctx) {
			continue
		}
		if intent, ok := p.match(text, ctx); ok {
			return intent
		}
	}
	return domain.CommandIntent{Kind: domain.IntentUnrecognized}
}

// patternTable is evaluated top to bottom; order is load-bearing. The
// transport family is first because its vocabulary overlaps with the
// backing-track and metronome families and must win while a track shows.
var patternTable = []pattern{
	{eligible: transportEligible, match: matchTransport},
	{match: matchMicToggle},
	{match: matchCloseDisplay},
	{match: matchShowDisplay},
	{match: matchBackingTrack},
	{eligible: backingActionEligible, match: matchBackingAction},
	{eligible: metronomeActionEligible, match: matchMetronomeAction},
	{match: matchMetronome},
	{eligible: bareBpmEligible, match: matchBareBpm},
}

func transportEligible(ctx Context) bool { return ctx.TransportActive }

func backingActionEligible(ctx Context) bool {
	return ctx.ActiveMode == domain.ModeBackingTrack
}

func metronomeActionEligible(ctx Context) bool {
	return ctx.ActiveMode == domain.ModeMetronome
}

func bareBpmEligible(ctx Context) bool {
	return ctx.ActiveMode == domain.ModeMetronome
}
