package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// ElevenLabs REST API defaults. The pcm_22050 output format is 16-bit
// little-endian mono at 22.05 kHz.
const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io"
	elevenLabsDefaultModel = "eleven_flash_v2_5"
	elevenLabsDefaultVoice = "pNInz6obpgDQGcFmaJgB"
	elevenLabsOutputFormat = "pcm_22050"
	elevenLabsSampleRate   = 22050
)

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	modelID string
	baseURL string
	client  *http.Client
	log     *log.Logger
}

// NewElevenLabs creates an ElevenLabs-backed synthesizer. Empty voiceID or
// modelID fall back to the defaults.
func NewElevenLabs(apiKey, voiceID, modelID string, logger *log.Logger) *ElevenLabs {
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
		log:     logger.With("component", "synth", "engine", "elevenlabs"),
	}
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Name implements Synthesizer.
func (s *ElevenLabs) Name() string { return "elevenlabs" }

// Synthesize implements Synthesizer.
func (s *ElevenLabs) Synthesize(ctx context.Context, text string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: s.modelID,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       0.60,
			SimilarityBoost: 0.80,
		},
	})
	if err != nil {
		return Audio{}, fmt.Errorf("%w: marshal elevenlabs request: %v", ErrSynthesisFailed, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", s.baseURL, s.voiceID, elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Audio{}, fmt.Errorf("%w: build elevenlabs request: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: elevenlabs request: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Audio{}, fmt.Errorf("%w: elevenlabs status %d: %s", ErrSynthesisFailed, resp.StatusCode, detail)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: read elevenlabs audio: %v", ErrSynthesisFailed, err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("%w: elevenlabs returned no audio", ErrSynthesisFailed)
	}

	s.log.Debug("synthesized speech", "model", s.modelID, "voice", s.voiceID, "chars", len(text), "bytes", len(data))

	return Audio{Data: data, SampleRate: elevenLabsSampleRate, Channels: 1}, nil
}
