package synth

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI TTS output format constants. The pcm response format is 16-bit
// little-endian mono at 24 kHz, which feeds the player directly.
const (
	openAISampleRate   = 24000
	openAIDefaultModel = string(openai.TTSModel1)
	openAIDefaultVoice = string(openai.VoiceFable)
)

// OpenAI synthesizes speech through the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	model  string
	voice  string
	speed  float64
	log    *log.Logger
}

// OpenAIOption customizes an OpenAI synthesizer.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel overrides the speech model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// WithOpenAIVoice overrides the voice.
func WithOpenAIVoice(voice string) OpenAIOption {
	return func(o *OpenAI) {
		if voice != "" {
			o.voice = voice
		}
	}
}

// WithOpenAISpeed overrides the speaking speed multiplier.
func WithOpenAISpeed(speed float64) OpenAIOption {
	return func(o *OpenAI) {
		if speed > 0 {
			o.speed = speed
		}
	}
}

// NewOpenAI creates an OpenAI-backed synthesizer.
func NewOpenAI(apiKey string, logger *log.Logger, opts ...OpenAIOption) *OpenAI {
	if logger == nil {
		logger = log.Default()
	}
	o := &OpenAI{
		client: openai.NewClient(apiKey),
		model:  openAIDefaultModel,
		voice:  openAIDefaultVoice,
		speed:  1.0,
		log:    logger.With("component", "synth", "engine", "openai"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name implements Synthesizer.
func (o *OpenAI) Name() string { return "openai" }

// Synthesize implements Synthesizer.
func (o *OpenAI) Synthesize(ctx context.Context, text string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(o.voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
		Speed:          o.speed,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("%w: openai speech: %v", ErrSynthesisFailed, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: read openai audio: %v", ErrSynthesisFailed, err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("%w: openai returned no audio", ErrSynthesisFailed)
	}

	o.log.Debug("synthesized speech", "model", o.model, "voice", o.voice, "chars", len(text), "bytes", len(data))

	return Audio{Data: data, SampleRate: openAISampleRate, Channels: 1}, nil
}
