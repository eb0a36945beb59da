package synth

import (
	"context"
	"sync"
	"time"
)

// Mock is a deterministic synthesizer for tests and dry runs. It produces
// silence sized to a fixed speaking rate and records every request.
type Mock struct {
	// SampleRate of the generated audio. Defaults to 22050.
	SampleRate int

	// Delay simulates synthesis latency.
	Delay time.Duration

	// WordsPerMinute controls how much audio a given text yields.
	// Defaults to 150.
	WordsPerMinute int

	// Err, when set, is returned by every Synthesize call.
	Err error

	mu    sync.Mutex
	calls []string
}

// Name implements Synthesizer.
func (m *Mock) Name() string { return "mock" }

// Synthesize implements Synthesizer.
func (m *Mock) Synthesize(ctx context.Context, text string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return Audio{}, ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return Audio{}, m.Err
	}

	rate := m.SampleRate
	if rate <= 0 {
		rate = 22050
	}
	wpm := m.WordsPerMinute
	if wpm <= 0 {
		wpm = 150
	}

	words := len(text)/5 + 1
	duration := time.Duration(words) * time.Minute / time.Duration(wpm)
	samples := int(duration.Seconds() * float64(rate))
	if samples < 1 {
		samples = 1
	}

	return Audio{Data: make([]byte, samples*2), SampleRate: rate, Channels: 1}, nil
}

// Calls returns every synthesized text in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
