package playback

import (
	"sync"
	"time"

	"github.com/dgnsrekt/narrator/internal/synth"
)

// MockPlayer simulates audio playback without touching an audio device.
// Playback "finishes" when the audio's nominal duration elapses, scaled by
// SpeedFactor so tests stay fast.
type MockPlayer struct {
	// SpeedFactor divides simulated playback time. Zero means real time.
	SpeedFactor int

	// Callbacks for test hooks.
	OnPlay func(audio synth.Audio)
	OnStop func()

	mu       sync.Mutex
	deadline time.Time
	playing  bool
	closed   bool

	playCount int
	stopCount int
}

// Play implements AudioPlayer.
func (m *MockPlayer) Play(audio synth.Audio) error {
	if len(audio.Data) == 0 {
		return ErrNothingToPlay
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrPlayerClosed
	}

	duration := audio.Duration()
	if m.SpeedFactor > 0 {
		duration /= time.Duration(m.SpeedFactor)
	}

	m.deadline = time.Now().Add(duration)
	m.playing = true
	m.playCount++

	if m.OnPlay != nil {
		m.OnPlay(audio)
	}
	return nil
}

// Stop implements AudioPlayer.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playing {
		m.playing = false
		m.stopCount++
		if m.OnStop != nil {
			m.OnStop()
		}
	}
	return nil
}

// IsPlaying implements AudioPlayer.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing {
		return false
	}
	if time.Now().After(m.deadline) {
		m.playing = false
		return false
	}
	return true
}

// Close implements AudioPlayer.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.closed = true
	return nil
}

// PlayCount returns how many times Play succeeded.
func (m *MockPlayer) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCount
}

// StopCount returns how many times Stop interrupted active playback.
func (m *MockPlayer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCount
}
