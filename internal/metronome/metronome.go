// Package metronome implements the metronome dispatch sink: a ticker
// goroutine emitting beat events the frontend renders as clicks.
package metronome

import (
	"sync"
	"time"

	"bandmate/internal/domain"
)

// Notifier receives metronome state and beat events for the UI.
type Notifier interface {
	MetronomeBeat(beat int, bpm int)
	MetronomeState(running bool, paused bool, bpm int)
}

// Metronome is safe for concurrent use; engine dispatches and the ticker
// goroutine share its state.
type Metronome struct {
	notifier Notifier

	mu      sync.Mutex
	bpm     int
	beat    int
	running bool
	paused  bool
	stopCh  chan struct{}
}

func New(notifier Notifier) *Metronome {
	return &Metronome{notifier: notifier, bpm: 120}
}

// clampBPM bounds the tempo; the classifier rejects out-of-range numbers,
// but programmatic callers are clamped here.
func clampBPM(bpm int) int {
	if bpm < domain.MinBPM {
		return domain.MinBPM
	}
	if bpm > domain.MaxBPM {
		return domain.MaxBPM
	}
	return bpm
}

func (m *Metronome) Start(bpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bpm = clampBPM(bpm)
	m.beat = 0
	m.paused = false
	if m.running {
		m.notifier.MetronomeState(true, false, m.bpm)
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	go m.run(m.stopCh)
	m.notifier.MetronomeState(true, false, m.bpm)
}

func (m *Metronome) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.paused = false
	close(m.stopCh)
	m.stopCh = nil
	m.notifier.MetronomeState(false, false, m.bpm)
}

func (m *Metronome) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.paused {
		return
	}
	m.paused = true
	m.notifier.MetronomeState(true, true, m.bpm)
}

func (m *Metronome) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || !m.paused {
		return
	}
	m.paused = false
	m.notifier.MetronomeState(true, false, m.bpm)
}

func (m *Metronome) SetBpm(bpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bpm = clampBPM(bpm)
	m.notifier.MetronomeState(m.running, m.paused, m.bpm)
}

// Bpm returns the current tempo.
func (m *Metronome) Bpm() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bpm
}

// Running reports whether the ticker goroutine is alive (paused counts as
// running; the mode owns it until an explicit stop).
func (m *Metronome) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// run ticks at the current tempo, re-arming the timer each beat so SetBpm
// takes effect on the next tick without restarting.
func (m *Metronome) run(stop chan struct{}) {
	for {
		m.mu.Lock()
		bpm := m.bpm
		paused := m.paused
		m.mu.Unlock()

		timer := time.NewTimer(time.Minute / time.Duration(bpm))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if paused {
			continue
		}

		m.mu.Lock()
		m.beat++
		beat := m.beat
		bpm = m.bpm
		m.mu.Unlock()
		m.notifier.MetronomeBeat(beat, bpm)
	}
}
