package synth

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrator/internal/config"
)

// FromConfig builds the synthesizer the configuration selects.
func FromConfig(cfg config.Config, logger *log.Logger) (Synthesizer, error) {
	switch strings.ToLower(cfg.Engine) {
	case config.EngineOpenAI:
		return NewOpenAI(cfg.OpenAI.APIKey, logger,
			WithOpenAIModel(cfg.OpenAI.Model),
			WithOpenAIVoice(cfg.OpenAI.Voice),
			WithOpenAISpeed(cfg.OpenAI.Speed),
		), nil

	case config.EngineElevenLabs:
		return NewElevenLabs(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.ModelID, logger), nil

	case config.EngineExec:
		e := NewExec(cfg.Exec.Command, cfg.Exec.Args, cfg.Exec.SampleRate, logger)
		if !e.Available() {
			return nil, fmt.Errorf("exec engine: command %q not found in PATH", cfg.Exec.Command)
		}
		return e, nil

	case config.EngineMock:
		return &Mock{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
