// Package config collects the narrator's settings from defaults, config
// files, flags, and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Engine names accepted for the tts.engine setting.
const (
	EngineOpenAI     = "openai"
	EngineElevenLabs = "elevenlabs"
	EngineExec       = "exec"
	EngineMock       = "mock"
)

// Defaults.
const (
	DefaultTranscriptDir      = "~/.claude/projects"
	DefaultPollInterval       = time.Second
	DefaultMaxNarrationLength = 2000
	DefaultNarrationGap       = 500 * time.Millisecond
	DefaultControlURL         = "ws://localhost:8080"
	DefaultClientName         = "TTS Narrator"
	DefaultReconnectDelay     = 5 * time.Second
)

// OpenAIConfig configures the OpenAI speech backend.
type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY"`
	Model  string
	Voice  string
	Speed  float64
}

// ElevenLabsConfig configures the ElevenLabs speech backend.
type ElevenLabsConfig struct {
	APIKey  string `env:"ELEVENLABS_API_KEY"`
	VoiceID string
	ModelID string
}

// ExecConfig configures the external-command speech backend. The command
// receives text on stdin and must write raw PCM16 mono to stdout.
type ExecConfig struct {
	Command    string
	Args       []string
	SampleRate int
}

// ControlConfig configures the backend control connection.
type ControlConfig struct {
	Enabled        bool
	URL            string
	ClientName     string
	ReconnectDelay time.Duration
}

// Config is the full narrator configuration.
type Config struct {
	TranscriptDir      string
	PollInterval       time.Duration
	ActiveOnly         bool
	MaxNarrationLength int
	NarrationGap       time.Duration
	Engine             string
	LogLevel           string

	OpenAI     OpenAIConfig
	ElevenLabs ElevenLabsConfig
	Exec       ExecConfig
	Control    ControlConfig
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TranscriptDir:      DefaultTranscriptDir,
		PollInterval:       DefaultPollInterval,
		ActiveOnly:         false,
		MaxNarrationLength: DefaultMaxNarrationLength,
		NarrationGap:       DefaultNarrationGap,
		Engine:             EngineOpenAI,
		LogLevel:           "info",
		OpenAI: OpenAIConfig{
			Model: "tts-1",
			Voice: "fable",
			Speed: 1.0,
		},
		ElevenLabs: ElevenLabsConfig{
			ModelID: "eleven_turbo_v2",
		},
		Exec: ExecConfig{
			SampleRate: 22050,
		},
		Control: ControlConfig{
			Enabled:        true,
			URL:            DefaultControlURL,
			ClientName:     DefaultClientName,
			ReconnectDelay: DefaultReconnectDelay,
		},
	}
}

// FromViper overlays viper-bound settings onto the defaults. Only keys viper
// has actually seen override, so absent config values keep their defaults.
func FromViper(v *viper.Viper) Config {
	c := Default()

	if v.IsSet("dir") {
		c.TranscriptDir = v.GetString("dir")
	}
	if v.IsSet("poll") {
		c.PollInterval = v.GetDuration("poll")
	}
	if v.IsSet("active") {
		c.ActiveOnly = v.GetBool("active")
	}
	if v.IsSet("max-length") {
		c.MaxNarrationLength = v.GetInt("max-length")
	}
	if v.IsSet("gap") {
		c.NarrationGap = v.GetDuration("gap")
	}
	if v.IsSet("engine") {
		c.Engine = v.GetString("engine")
	}
	if v.IsSet("log-level") {
		c.LogLevel = v.GetString("log-level")
	}

	if v.IsSet("openai.model") {
		c.OpenAI.Model = v.GetString("openai.model")
	}
	if v.IsSet("openai.voice") {
		c.OpenAI.Voice = v.GetString("openai.voice")
	}
	if v.IsSet("openai.speed") {
		c.OpenAI.Speed = v.GetFloat64("openai.speed")
	}

	if v.IsSet("elevenlabs.voice") {
		c.ElevenLabs.VoiceID = v.GetString("elevenlabs.voice")
	}
	if v.IsSet("elevenlabs.model") {
		c.ElevenLabs.ModelID = v.GetString("elevenlabs.model")
	}

	if v.IsSet("exec.command") {
		c.Exec.Command = v.GetString("exec.command")
	}
	if v.IsSet("exec.args") {
		c.Exec.Args = v.GetStringSlice("exec.args")
	}
	if v.IsSet("exec.sample-rate") {
		c.Exec.SampleRate = v.GetInt("exec.sample-rate")
	}

	if v.IsSet("control.enabled") {
		c.Control.Enabled = v.GetBool("control.enabled")
	}
	if v.IsSet("control.url") {
		c.Control.URL = v.GetString("control.url")
	}
	if v.IsSet("control.name") {
		c.Control.ClientName = v.GetString("control.name")
	}
	if v.IsSet("control.reconnect") {
		c.Control.ReconnectDelay = v.GetDuration("control.reconnect")
	}

	return c
}

// ApplyEnv fills API keys from the process environment.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(&c.OpenAI); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if err := env.Parse(&c.ElevenLabs); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Validate checks the configuration for the selected engine.
func (c Config) Validate() error {
	if c.TranscriptDir == "" {
		return fmt.Errorf("transcript directory must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxNarrationLength <= 0 {
		return fmt.Errorf("max narration length must be positive, got %d", c.MaxNarrationLength)
	}
	if c.NarrationGap < 0 {
		return fmt.Errorf("narration gap must not be negative, got %s", c.NarrationGap)
	}

	switch strings.ToLower(c.Engine) {
	case EngineOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai engine requires OPENAI_API_KEY")
		}
		if c.OpenAI.Speed < 0.25 || c.OpenAI.Speed > 4.0 {
			return fmt.Errorf("openai speed must be 0.25..4.0, got %g", c.OpenAI.Speed)
		}
	case EngineElevenLabs:
		if c.ElevenLabs.APIKey == "" {
			return fmt.Errorf("elevenlabs engine requires ELEVENLABS_API_KEY")
		}
		if c.ElevenLabs.VoiceID == "" {
			return fmt.Errorf("elevenlabs engine requires a voice id")
		}
	case EngineExec:
		if c.Exec.Command == "" {
			return fmt.Errorf("exec engine requires a command")
		}
		if c.Exec.SampleRate < 8000 || c.Exec.SampleRate > 48000 {
			return fmt.Errorf("exec sample rate must be 8000..48000 Hz, got %d", c.Exec.SampleRate)
		}
	case EngineMock:
	default:
		return fmt.Errorf("unknown engine %q (want openai, elevenlabs, exec, or mock)", c.Engine)
	}

	if c.Control.Enabled {
		if c.Control.URL == "" {
			return fmt.Errorf("control connection requires a url")
		}
		if c.Control.ReconnectDelay <= 0 {
			return fmt.Errorf("control reconnect delay must be positive, got %s", c.Control.ReconnectDelay)
		}
	}

	return nil
}

// EngineSampleRate returns the PCM sample rate the selected engine emits.
func (c Config) EngineSampleRate() int {
	switch strings.ToLower(c.Engine) {
	case EngineOpenAI:
		return 24000
	case EngineElevenLabs:
		return 22050
	case EngineExec:
		return c.Exec.SampleRate
	default:
		return 22050
	}
}

// ExpandPath resolves a leading ~ in the transcript directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand path %q: %w", path, err)
	}
	return expanded, nil
}
