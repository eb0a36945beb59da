package playback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/dgnsrekt/narrator/internal/synth"
)

// interruptCheckInterval is how often an active playback is checked for
// completion or interruption.
const interruptCheckInterval = 10 * time.Millisecond

// Controller owns at most one narration session at a time. A new Speak
// preempts the active session; Stop and the mute toggle silence it with
// bounded latency. All session reads and writes happen under one lock so a
// Stop can never race past a Speak installing a new session.
type Controller struct {
	synth  synth.Synthesizer
	player AudioPlayer
	log    *log.Logger

	mu      sync.Mutex
	session *Session

	enabled atomic.Bool
	seq     atomic.Int64

	checkInterval time.Duration
}

// NewController creates a controller. Narration starts enabled.
func NewController(s synth.Synthesizer, p AudioPlayer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{
		synth:         s,
		player:        p,
		log:           logger.With("component", "playback"),
		checkInterval: interruptCheckInterval,
	}
	c.enabled.Store(true)
	return c
}

// Speak synthesizes text and plays it, preempting any in-flight session
// first. It returns once playback completes, is interrupted, or fails.
// While narration is disabled, Speak is a no-op: no synthesis happens at
// all, not just no audio.
func (c *Controller) Speak(ctx context.Context, text string) error {
	if !c.enabled.Load() {
		c.log.Debug("narration disabled, skipping", "chars", len(text))
		return nil
	}

	sess := &Session{
		ID:       uuid.NewString()[:8],
		Sequence: c.seq.Add(1),
	}

	c.mu.Lock()
	c.interruptLocked()
	sess.transition(StateSynthesizing)
	c.session = sess
	c.mu.Unlock()

	audio, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		c.finish(sess, StateInterrupted)
		return fmt.Errorf("synthesize: %w", err)
	}

	c.mu.Lock()
	if sess.State() != StateSynthesizing || c.session != sess {
		// Interrupted or superseded while synthesizing; discard the result.
		c.mu.Unlock()
		return nil
	}
	if !c.enabled.Load() {
		sess.transition(StateInterrupted)
		c.session = nil
		c.mu.Unlock()
		return nil
	}
	if err := c.player.Play(audio); err != nil {
		sess.transition(StateInterrupted)
		c.session = nil
		c.mu.Unlock()
		return fmt.Errorf("play: %w", err)
	}
	sess.transition(StatePlaying)
	c.mu.Unlock()

	c.log.Info("narrating",
		"session", sess.ID,
		"seq", sess.Sequence,
		"audio", humanize.Bytes(uint64(len(audio.Data))),
		"duration", audio.Duration().Round(time.Millisecond))

	return c.wait(ctx, sess)
}

// wait blocks until the session leaves StatePlaying. The check interval is
// the audible latency floor for interruption.
func (c *Controller) wait(ctx context.Context, sess *Session) error {
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case <-ticker.C:
			if sess.State() != StatePlaying {
				return nil
			}
			if c.player.IsPlaying() {
				continue
			}
			c.finish(sess, StateCompleted)
			c.log.Debug("narration finished", "session", sess.ID)
			return nil
		}
	}
}

// Stop forces the active session to Interrupted and silences audio
// immediately. Safe to call from any goroutine, at any time.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interruptLocked()
}

// interruptLocked preempts the active session. Caller holds c.mu.
func (c *Controller) interruptLocked() {
	if c.session == nil {
		return
	}
	if st := c.session.State(); st == StateSynthesizing || st == StatePlaying {
		c.session.transition(StateInterrupted)
		_ = c.player.Stop()
		c.log.Debug("narration interrupted", "session", c.session.ID, "was", st)
	}
	c.session = nil
}

// finish moves a session to a terminal state if it is still active.
func (c *Controller) finish(sess *Session, to SessionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !sess.State().Terminal() {
		sess.transition(to)
	}
	if c.session == sess {
		c.session = nil
	}
}

// SetEnabled applies the control toggle. Disabling has the same immediate
// effect as Stop and additionally blocks future Speak calls until
// re-enabled.
func (c *Controller) SetEnabled(enabled bool) {
	was := c.enabled.Swap(enabled)
	if was == enabled {
		return
	}
	if enabled {
		c.log.Info("narration enabled")
		return
	}
	c.log.Info("narration disabled, stopping playback")
	c.Stop()
}

// Enabled reports the current toggle value.
func (c *Controller) Enabled() bool {
	return c.enabled.Load()
}

// State returns the active session's state, or StateIdle when none exists.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return StateIdle
	}
	return c.session.State()
}

// Close stops any playback and releases the audio device.
func (c *Controller) Close() error {
	c.Stop()
	return c.player.Close()
}
