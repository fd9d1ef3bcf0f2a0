// Package backing generates and plays backing tracks through a
// third-party music-generation HTTP API.
package backing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Track is a generated backing track ready for playback.
type Track struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	AudioURL    string `json:"audioUrl"`
	DurationSec int    `json:"durationSec,omitempty"`
}

// ClientConfig controls the generation API client.
type ClientConfig struct {
	APIBaseURL   string
	APIKey       string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client submits generation jobs and polls them to completion.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 90 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  slog.Default(),
	}
}

type generationRequest struct {
	Prompt         string `json:"prompt"`
	IdempotencyKey string `json:"idempotencyKey"`
	Format         string `json:"format"`
}

type generationResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	AudioURL string `json:"audio_url"`
	Duration int    `json:"duration"`
	Error    string `json:"error"`
}

// Generate submits a prompt and blocks until the job completes or the
// poll timeout elapses.
func (c *Client) Generate(ctx context.Context, prompt string) (Track, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return Track{}, errors.New("music generation API key is not configured")
	}

	key := uuid.NewString()
	job, err := c.submit(ctx, prompt, key)
	if err != nil {
		return Track{}, err
	}
	c.log.Debug("generation job submitted", "job", job.ID, "key", key)

	deadline := time.Now().Add(c.cfg.PollTimeout)
	for {
		switch job.Status {
		case "complete", "succeeded":
			return Track{
				ID:          job.ID,
				Description: prompt,
				AudioURL:    job.AudioURL,
				DurationSec: job.Duration,
			}, nil
		case "failed", "error":
			msg := job.Error
			if msg == "" {
				msg = "generation failed"
			}
			return Track{}, fmt.Errorf("generation job %s: %s", job.ID, msg)
		}

		if time.Now().After(deadline) {
			return Track{}, fmt.Errorf("generation job %s timed out", job.ID)
		}

		select {
		case <-ctx.Done():
			return Track{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		job, err = c.poll(ctx, job.ID)
		if err != nil {
			return Track{}, err
		}
	}
}

func (c *Client) submit(ctx context.Context, prompt, key string) (generationResponse, error) {
	body, err := json.Marshal(generationRequest{Prompt: prompt, IdempotencyKey: key, Format: "mp3"})
	if err != nil {
		return generationResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+"/v1/generations", bytes.NewReader(body))
	if err != nil {
		return generationResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	return c.do(req)
}

func (c *Client) poll(ctx context.Context, id string) (generationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+"/v1/generations/"+id, nil)
	if err != nil {
		return generationResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (generationResponse, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return generationResponse{}, fmt.Errorf("generation API request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return generationResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return generationResponse{}, fmt.Errorf("generation API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var out generationResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return generationResponse{}, fmt.Errorf("invalid generation API response: %w", err)
	}
	return out, nil
}
