// Package synth provides speech-synthesis backends behind a single
// interface. Every backend returns 16-bit little-endian PCM so the playback
// layer never has to decode anything.
package synth

import (
	"context"
	"errors"
	"time"
)

// Common errors for speech synthesis.
var (
	ErrEmptyText       = errors.New("no text to synthesize")
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	ErrUnknownEngine   = errors.New("unknown synthesis engine")
)

// Audio is synthesized PCM16 audio.
type Audio struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Duration reports the playback length of the audio.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	samples := len(a.Data) / (2 * a.Channels)
	return time.Duration(samples) * time.Second / time.Duration(a.SampleRate)
}

// Synthesizer converts text into playable audio. Implementations may be slow
// and may fail; callers treat both as per-request conditions, never fatal.
type Synthesizer interface {
	// Synthesize converts text to audio, honoring context cancellation.
	Synthesize(ctx context.Context, text string) (Audio, error)

	// Name identifies the backend for logs.
	Name() string
}
