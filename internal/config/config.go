package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the app backend.
type Config struct {
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Engine   EngineConfig
	Backing  BackingConfig
	Spotify  SpotifyConfig
	SaveDir  string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkSize       int
}

// EngineConfig holds the arbitration timing windows.
type EngineConfig struct {
	DispatchCooldown     time.Duration
	InterimDebounce      time.Duration
	ModeStartCooldown    time.Duration
	DisplayCloseCooldown time.Duration
	CaptureTimeout       time.Duration
	RestartBackoff       time.Duration
}

type BackingConfig struct {
	APIBaseURL string
	APIKey     string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
	LoopbackPort int
}

// Load resolves configuration from a .env file (if present), environment
// variables, and sensible defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("BANDMATE_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("BANDMATE_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("BANDMATE_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("BANDMATE_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("BANDMATE_CHANNELS", 1),
			ChunkSize:       envOrDefaultInt("BANDMATE_AUDIO_CHUNK_SIZE", 4096),
		},
		Engine: EngineConfig{
			DispatchCooldown:     envOrDefaultMillis("BANDMATE_DISPATCH_COOLDOWN_MS", 2500),
			InterimDebounce:      envOrDefaultMillis("BANDMATE_INTERIM_DEBOUNCE_MS", 400),
			ModeStartCooldown:    envOrDefaultMillis("BANDMATE_MODE_START_COOLDOWN_MS", 6000),
			DisplayCloseCooldown: envOrDefaultMillis("BANDMATE_DISPLAY_CLOSE_COOLDOWN_MS", 6000),
			CaptureTimeout:       envOrDefaultMillis("BANDMATE_CAPTURE_TIMEOUT_MS", 5000),
			RestartBackoff:       envOrDefaultMillis("BANDMATE_RESTART_BACKOFF_MS", 500),
		},
		Backing: BackingConfig{
			APIBaseURL: envOrDefault("BANDMATE_MUSICGEN_API_BASE", "https://api.musicgen.example.com"),
			APIKey:     strings.TrimSpace(os.Getenv("BANDMATE_MUSICGEN_API_KEY")),
		},
		Spotify: SpotifyConfig{
			ClientID:     strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_ID")),
			ClientSecret: strings.TrimSpace(os.Getenv("SPOTIFY_CLIENT_SECRET")),
			APIBaseURL:   envOrDefault("SPOTIFY_API_BASE", "https://api.spotify.com"),
			LoopbackPort: envOrDefaultInt("BANDMATE_AUTH_PORT", 8978),
		},
		SaveDir: envOrDefault("BANDMATE_SAVE_DIR", filepath.Join(home, ".config", "bandmate", "tracks")),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultMillis(key string, fallback int) time.Duration {
	value := envOrDefaultInt(key, fallback)
	if value < 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
