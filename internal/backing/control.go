package backing

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bandmate/internal/domain"
	"bandmate/internal/ports"
)

// Notifier receives backing-track lifecycle events for the UI, which owns
// actual audio playback.
type Notifier interface {
	BackingGenerating(description string)
	BackingReady(track Track)
	BackingPlayback(playing bool)
	BackingStopped()
	EngineError(code domain.ErrorCode, detail string)
}

// Control implements ports.BackingTrackControl. Describe runs generation
// asynchronously so the engine dispatch stays fast; a Stop arriving while
// a generation is in flight cancels it.
type Control struct {
	client   *Client
	notifier Notifier
	saveDir  string
	log      *slog.Logger

	mu        sync.Mutex
	cancelGen context.CancelFunc
	lastTrack *Track
}

var _ ports.BackingTrackControl = (*Control)(nil)

func NewControl(client *Client, notifier Notifier, saveDir string) *Control {
	return &Control{client: client, notifier: notifier, saveDir: saveDir, log: slog.Default()}
}

func (c *Control) Describe(text string) {
	c.mu.Lock()
	if c.cancelGen != nil {
		c.cancelGen()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelGen = cancel
	c.mu.Unlock()

	c.notifier.BackingGenerating(text)

	go func() {
		track, err := c.client.Generate(ctx, text)
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("backing track generation failed", "error", err)
				c.notifier.EngineError(domain.ErrorCodeBacking, err.Error())
			}
			return
		}

		c.mu.Lock()
		c.lastTrack = &track
		c.mu.Unlock()
		c.notifier.BackingReady(track)
	}()
}

func (c *Control) Pause() {
	c.notifier.BackingPlayback(false)
}

func (c *Control) Resume() {
	c.notifier.BackingPlayback(true)
}

// Save persists the last generated track's metadata under the user config
// dir so the frontend can list saved tracks across sessions.
func (c *Control) Save() {
	c.mu.Lock()
	track := c.lastTrack
	c.mu.Unlock()
	if track == nil {
		return
	}

	if err := c.writeSaved(*track); err != nil {
		c.log.Warn("failed to save backing track", "error", err)
		c.notifier.EngineError(domain.ErrorCodeBacking, err.Error())
	}
}

func (c *Control) Stop() {
	c.mu.Lock()
	if c.cancelGen != nil {
		c.cancelGen()
		c.cancelGen = nil
	}
	c.mu.Unlock()
	c.notifier.BackingStopped()
}

// LastTrack returns the most recently generated track, if any.
func (c *Control) LastTrack() (Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastTrack == nil {
		return Track{}, false
	}
	return *c.lastTrack, true
}

func (c *Control) writeSaved(track Track) error {
	if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(struct {
		Track
		SavedAt time.Time `json:"savedAt"`
	}{Track: track, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	name := filepath.Join(c.saveDir, track.ID+".json")
	return os.WriteFile(name, payload, 0o600)
}
