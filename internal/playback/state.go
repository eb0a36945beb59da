// Package playback owns the single active narration session: synthesis,
// audio output, preemption, and the external mute toggle.
package playback

import "sync/atomic"

// SessionState is the lifecycle state of one narration session.
type SessionState int32

const (
	// StateIdle means no session exists.
	StateIdle SessionState = iota
	// StateSynthesizing means speech is being generated.
	StateSynthesizing
	// StatePlaying means audio is audible.
	StatePlaying
	// StateInterrupted means the session was cut short by preemption, the
	// mute toggle, or a playback error.
	StateInterrupted
	// StateCompleted means playback finished naturally.
	StateCompleted
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSynthesizing:
		return "synthesizing"
	case StatePlaying:
		return "playing"
	case StateInterrupted:
		return "interrupted"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has finished, one way or the other.
func (s SessionState) Terminal() bool {
	return s == StateInterrupted || s == StateCompleted
}

// validTransitions holds the allowed state changes. Interruption is reachable
// from both active states; nothing leaves a terminal state.
var validTransitions = map[SessionState][]SessionState{
	StateIdle:         {StateSynthesizing},
	StateSynthesizing: {StatePlaying, StateInterrupted},
	StatePlaying:      {StateCompleted, StateInterrupted},
}

// Session is one synthesize-then-play lifecycle for a single narration
// request. At most one session is in a non-terminal state at any time.
type Session struct {
	// ID is a short random identifier for logs.
	ID string

	// Sequence is the monotonically increasing request number.
	Sequence int64

	state atomic.Int32
}

// State returns the session's current state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// transition moves the session to the given state if the state machine
// allows it. Callers serialize transitions through the controller's lock;
// the atomic store only makes State safe to read without it.
func (s *Session) transition(to SessionState) bool {
	from := s.State()
	for _, next := range validTransitions[from] {
		if next == to {
			s.state.Store(int32(to))
			return true
		}
	}
	return false
}
