package offset

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	tr := NewTracker()

	if err := tr.Initialize("a.jsonl", 128); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := tr.Current("a.jsonl"); got != 128 {
		t.Errorf("Current() = %d, want 128", got)
	}
	if !tr.Tracked("a.jsonl") {
		t.Error("Tracked() = false, want true")
	}

	if err := tr.Initialize("a.jsonl", 256); !errors.Is(err, ErrAlreadyTracked) {
		t.Errorf("second Initialize() error = %v, want ErrAlreadyTracked", err)
	}
	if got := tr.Current("a.jsonl"); got != 128 {
		t.Errorf("Current() after failed re-init = %d, want 128", got)
	}

	if err := tr.Initialize("b.jsonl", -1); !errors.Is(err, ErrNegativeOffset) {
		t.Errorf("Initialize(-1) error = %v, want ErrNegativeOffset", err)
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name    string
		start   int64
		to      int64
		wantErr error
	}{
		{name: "forward", start: 10, to: 20},
		{name: "same offset", start: 10, to: 10},
		{name: "regression", start: 10, to: 5, wantErr: ErrOffsetRegression},
		{name: "negative", start: 10, to: -3, wantErr: ErrNegativeOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			if err := tr.Initialize("f", tt.start); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}

			err := tr.Advance("f", tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Advance() error = %v, want %v", err, tt.wantErr)
			}

			want := tt.to
			if tt.wantErr != nil {
				want = tt.start
			}
			if got := tr.Current("f"); got != want {
				t.Errorf("Current() = %d, want %d", got, want)
			}
		})
	}
}

func TestCurrentUnknown(t *testing.T) {
	tr := NewTracker()
	if got := tr.Current("never-seen"); got != 0 {
		t.Errorf("Current() for unknown file = %d, want 0", got)
	}
	if tr.Tracked("never-seen") {
		t.Error("Tracked() for unknown file = true, want false")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("file-%d", n)
			if err := tr.Initialize(id, 0); err != nil {
				t.Errorf("Initialize(%s) error = %v", id, err)
				return
			}
			for off := int64(1); off <= 100; off++ {
				if err := tr.Advance(id, off); err != nil {
					t.Errorf("Advance(%s, %d) error = %v", id, off, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if got := tr.Len(); got != 8 {
		t.Errorf("Len() = %d, want 8", got)
	}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("file-%d", i)
		if got := tr.Current(id); got != 100 {
			t.Errorf("Current(%s) = %d, want 100", id, got)
		}
	}
}
