// Package offset tracks per-file read positions for transcript tailing.
package offset

import (
	"errors"
	"fmt"
	"sync"
)

// Common errors for offset tracking.
var (
	// ErrAlreadyTracked is returned when Initialize is called twice for a file.
	ErrAlreadyTracked = errors.New("file is already tracked")

	// ErrNegativeOffset is returned for offsets below zero.
	ErrNegativeOffset = errors.New("offset must not be negative")

	// ErrOffsetRegression is returned when Advance would move an offset
	// backwards. Offsets only ever grow; a regression is a caller bug, not a
	// condition to clamp away.
	ErrOffsetRegression = errors.New("offset would move backwards")
)

// Tracker maps a file identifier to the byte offset of the last read. It is
// pure in-memory state, safe for concurrent use, and scoped to one process
// run: nothing is persisted.
type Tracker struct {
	mu      sync.Mutex
	offsets map[string]int64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		offsets: make(map[string]int64),
	}
}

// Initialize registers a file at its starting offset. Callers pass the file's
// current end position, never zero, so content that predates tracking is
// never replayed. Initializing the same identifier twice is an error.
func (t *Tracker) Initialize(id string, off int64) error {
	if off < 0 {
		return fmt.Errorf("initialize %q at %d: %w", id, off, ErrNegativeOffset)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.offsets[id]; ok {
		return fmt.Errorf("initialize %q: %w", id, ErrAlreadyTracked)
	}
	t.offsets[id] = off
	return nil
}

// Advance moves a file's offset forward after a successful read.
func (t *Tracker) Advance(id string, off int64) error {
	if off < 0 {
		return fmt.Errorf("advance %q to %d: %w", id, off, ErrNegativeOffset)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cur := t.offsets[id]; off < cur {
		return fmt.Errorf("advance %q from %d to %d: %w", id, cur, off, ErrOffsetRegression)
	}
	t.offsets[id] = off
	return nil
}

// Current returns the tracked offset for a file. Unknown identifiers report
// zero; in steady state every tracked file has been initialized first.
func (t *Tracker) Current(id string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offsets[id]
}

// Tracked reports whether a file has been initialized.
func (t *Tracker) Tracked(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.offsets[id]
	return ok
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.offsets)
}
