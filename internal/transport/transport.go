// Package transport controls playback on the user's music service while a
// track is showing, and handles the thin OAuth token exchange it needs.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bandmate/internal/domain"
	"bandmate/internal/ports"
)

// TokenSource supplies a current bearer token, refreshing as needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Notifier surfaces transport failures to the UI.
type Notifier interface {
	EngineError(code domain.ErrorCode, detail string)
}

// Client implements ports.TransportControl against the music service Web
// API. Calls run asynchronously so engine dispatch stays fast; failures
// are reported, never retried. The user can just repeat the command.
type Client struct {
	baseURL  string
	tokens   TokenSource
	notifier Notifier
	http     *http.Client
	log      *slog.Logger
}

var _ ports.TransportControl = (*Client)(nil)

func NewClient(baseURL string, tokens TokenSource, notifier Notifier) *Client {
	if baseURL == "" {
		baseURL = "https://api.spotify.com"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		notifier: notifier,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      slog.Default(),
	}
}

func (c *Client) Pause() { c.async(func(ctx context.Context) error { return c.put(ctx, "/v1/me/player/pause", nil) }) }
func (c *Client) Play()  { c.async(func(ctx context.Context) error { return c.put(ctx, "/v1/me/player/play", nil) }) }

// Stop maps to pause; the Web API has no dedicated stop.
func (c *Client) Stop() { c.Pause() }

func (c *Client) Restart() {
	c.async(func(ctx context.Context) error {
		return c.put(ctx, "/v1/me/player/seek", url.Values{"position_ms": {"0"}})
	})
}

func (c *Client) Skip() {
	c.async(func(ctx context.Context) error { return c.post(ctx, "/v1/me/player/next") })
}

// Seek moves relative to the current playback position, clamping at the
// start of the track.
func (c *Client) Seek(deltaSeconds int, direction domain.SeekDirection) {
	c.async(func(ctx context.Context) error {
		progress, err := c.playbackProgressMs(ctx)
		if err != nil {
			return err
		}
		delta := deltaSeconds * 1000
		if direction == domain.SeekBack {
			delta = -delta
		}
		target := progress + delta
		if target < 0 {
			target = 0
		}
		return c.put(ctx, "/v1/me/player/seek", url.Values{"position_ms": {strconv.Itoa(target)}})
	})
}

func (c *Client) async(call func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := call(ctx); err != nil {
			c.log.Warn("transport call failed", "error", err)
			c.notifier.EngineError(domain.ErrorCodeTransport, err.Error())
		}
	}()
}

func (c *Client) playbackProgressMs(ctx context.Context) (int, error) {
	body, err := c.request(ctx, http.MethodGet, "/v1/me/player", nil)
	if err != nil {
		return 0, err
	}
	var state struct {
		ProgressMs int `json:"progress_ms"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return 0, fmt.Errorf("invalid player state: %w", err)
	}
	return state.ProgressMs, nil
}

func (c *Client) put(ctx context.Context, path string, query url.Values) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	_, err := c.request(ctx, http.MethodPut, path, nil)
	return err
}

func (c *Client) post(ctx context.Context, path string) error {
	_, err := c.request(ctx, http.MethodPost, path, nil)
	return err
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("no playback token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transport API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}
