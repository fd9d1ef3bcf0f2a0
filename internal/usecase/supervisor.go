package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bandmate/internal/domain"
	"bandmate/internal/ports"
)

// superviseRecognizer keeps a recognizer session alive for as long as
// voice input is enabled. A session ending for any reason is recovered by
// an immediate restart after a short backoff; this is never fatal.
func (c *VoiceController) superviseRecognizer(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.runRecognizerSession(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !isIgnorableRecognizerErr(err) {
			c.log.Warn("recognizer session ended", "error", err)
			c.events.EngineError(domain.ErrorCodeRecognizer, err.Error())
		} else {
			c.log.Debug("recognizer session ended, restarting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.RestartBackoff):
		}
	}
}

// runRecognizerSession runs one capture+stream session to completion:
// microphone chunks go up, transcript events come down into the engine.
func (c *VoiceController) runRecognizerSession(ctx context.Context) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.provider.StartStreaming(sessionCtx, c.cfg.Streaming)
	if err != nil {
		return fmt.Errorf("start recognizer stream: %w", err)
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		return fmt.Errorf("start microphone capture: %w", err)
	}

	audioDone := make(chan struct{})
	go c.pumpAudio(audioSession, stream, audioDone)

	for ev := range stream.Events() {
		if strings.TrimSpace(ev.Text) == "" {
			continue
		}
		if ev.ReceivedAt.IsZero() {
			ev.ReceivedAt = c.now()
		}
		if ev.Kind == domain.TranscriptKindPartial {
			c.events.PartialTranscript(ev.Text)
		}
		c.HandleTranscript(ev)
	}

	streamErr := stream.Wait()
	_ = audioSession.Stop()
	_ = stream.Close()
	<-audioDone
	return streamErr
}

func (c *VoiceController) pumpAudio(audio ports.AudioSession, stream ports.StreamingSession, done chan struct{}) {
	defer close(done)

	buf := make([]byte, c.cfg.ChunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				c.log.Warn("failed to stream audio", "error", sendErr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.events.EngineError(domain.ErrorCodeAudio, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

// isIgnorableRecognizerErr filters recognizer transport chatter (silence
// detection and the like) that should not surface as a user-visible error.
func isIgnorableRecognizerErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no speech") || strings.Contains(msg, "timed out waiting for audio")
}
