package playback

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/narrator/internal/synth"
)

// Player errors.
var (
	ErrNothingToPlay     = errors.New("no audio to play")
	ErrPlayerClosed      = errors.New("audio player is closed")
	ErrFormatMismatch    = errors.New("audio format does not match player configuration")
	ErrNoAudioDevice     = errors.New("audio device unavailable")
	ErrInvalidPlayerConf = errors.New("invalid player configuration")
)

// AudioPlayer is the playback primitive the Controller drives. Stop must
// halt audible output immediately, not at a buffer boundary; that guarantee
// is what makes the external mute toggle feel instant.
type AudioPlayer interface {
	// Play starts playback of the given audio and returns without waiting
	// for completion. Any current playback is stopped first.
	Play(audio synth.Audio) error

	// Stop forcefully terminates playback.
	Stop() error

	// IsPlaying reports whether audio is currently audible.
	IsPlaying() bool

	// Close releases the audio device.
	Close() error
}

// PlayerConfig configures the audio output device.
type PlayerConfig struct {
	SampleRate int // samples per second, 8000..48000
	Channels   int // 1 = mono, 2 = stereo
	BufferSize int // device buffer in bytes; small keeps stops snappy
}

// DefaultPlayerConfig returns the default device configuration for mono
// PCM16 speech.
func DefaultPlayerConfig(sampleRate int) PlayerConfig {
	return PlayerConfig{
		SampleRate: sampleRate,
		Channels:   1,
		BufferSize: 4096,
	}
}

func (c PlayerConfig) validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("%w: sample rate must be 8000..48000 Hz, got %d", ErrInvalidPlayerConf, c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: channels must be 1 or 2, got %d", ErrInvalidPlayerConf, c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive", ErrInvalidPlayerConf)
	}
	return nil
}

// OtoPlayer plays PCM16 audio through the system audio device using oto.
// Stop pauses and closes the underlying oto player, which silences output
// within the device buffer, well inside the latency budget.
type OtoPlayer struct {
	context *oto.Context
	config  PlayerConfig

	mu     sync.Mutex
	player *oto.Player
	// stream keeps the audio bytes alive while oto reads them.
	stream []byte
	closed bool
}

// NewOtoPlayer opens the system audio device. Failure here is the one fatal
// startup condition: a narrator without an output device is useless.
func NewOtoPlayer(config PlayerConfig) (*OtoPlayer, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(config.BufferSize) * time.Second / time.Duration(config.SampleRate*config.Channels*2),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAudioDevice, err)
	}
	<-ready

	return &OtoPlayer{context: ctx, config: config}, nil
}

// Play implements AudioPlayer.
func (p *OtoPlayer) Play(audio synth.Audio) error {
	if len(audio.Data) == 0 {
		return ErrNothingToPlay
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	if audio.SampleRate != p.config.SampleRate || audio.Channels != p.config.Channels {
		return fmt.Errorf("%w: got %d Hz / %d ch, want %d Hz / %d ch",
			ErrFormatMismatch, audio.SampleRate, audio.Channels, p.config.SampleRate, p.config.Channels)
	}

	p.stopLocked()

	// Copy so the caller can't mutate the buffer mid-playback.
	data := make([]byte, len(audio.Data))
	copy(data, audio.Data)

	player := p.context.NewPlayer(bytes.NewReader(data))
	p.player = player
	p.stream = data
	player.Play()

	return nil
}

// Stop implements AudioPlayer.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *OtoPlayer) stopLocked() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	_ = p.player.Close()
	p.player = nil
	p.stream = nil
}

// IsPlaying implements AudioPlayer.
func (p *OtoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

// Close implements AudioPlayer.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	// oto contexts have no Close in v3; dropping the reference is enough.
	p.context = nil
	return nil
}
