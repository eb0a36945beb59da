package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/narrator/internal/offset"
	"github.com/dgnsrekt/narrator/internal/playback"
	"github.com/dgnsrekt/narrator/internal/synth"
	"github.com/dgnsrekt/narrator/internal/transcript"
)

func newTestPipeline(dir string, gap time.Duration) (*Pipeline, *synth.Mock, *playback.MockPlayer) {
	s := &synth.Mock{}
	p := &playback.MockPlayer{SpeedFactor: 1000}

	tailer := transcript.NewTailer(dir, offset.NewTracker(), transcript.Options{
		Interval: 10 * time.Millisecond,
	})
	extractor := transcript.NewExtractor(0)
	ctrl := playback.NewController(s, p, nil)

	return New(tailer, extractor, ctrl, nil, gap, nil), s, p
}

func appendAssistantLine(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	line := fmt.Sprintf(`{"type":"assistant","message":{"content":[{"type":"text","text":%q}]}}`+"\n", text)
	if _, err := f.WriteString(line); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitLatestWins(t *testing.T) {
	pipe, _, _ := newTestPipeline(t.TempDir(), 0)

	pipe.submit("first")
	pipe.submit("second")
	pipe.submit("third")

	select {
	case req := <-pipe.requests:
		if req.text != "third" {
			t.Errorf("queued narration = %q, want third (stale ones dropped)", req.text)
		}
	default:
		t.Fatal("mailbox empty, want the latest narration queued")
	}

	select {
	case req := <-pipe.requests:
		t.Errorf("mailbox held a second narration %q, want exactly one", req.text)
	default:
	}
}

func TestSubmitAfterDrain(t *testing.T) {
	pipe, _, _ := newTestPipeline(t.TempDir(), 0)

	pipe.submit("a")
	<-pipe.requests

	pipe.submit("b")
	select {
	case req := <-pipe.requests:
		if req.text != "b" {
			t.Errorf("queued narration = %q, want b", req.text)
		}
	default:
		t.Fatal("mailbox empty after fresh submit")
	}
}

func TestRunNarratesAppendedText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	appendAssistantLine(t, path, "already on disk")

	pipe, s, _ := newTestPipeline(dir, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pipe.Run(ctx)
	}()

	// Let the initial scan land before appending.
	time.Sleep(50 * time.Millisecond)
	appendAssistantLine(t, path, "read this aloud")

	deadline := time.After(3 * time.Second)
	for {
		calls := s.Calls()
		if len(calls) > 0 {
			if calls[0] != "read this aloud" {
				t.Fatalf("synthesized = %v, want [read this aloud]", calls)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for narration")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Content that predates the pipeline is never narrated.
	for _, call := range s.Calls() {
		if call == "already on disk" {
			t.Error("pre-existing transcript content was narrated")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not shut down")
	}
}

func TestRunPacesNarrations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")

	const gap = 100 * time.Millisecond
	pipe, s, _ := newTestPipeline(dir, gap)

	var stamps []time.Time
	pipe.ctrl = playback.NewController(s, &playback.MockPlayer{
		SpeedFactor: 1000,
		OnPlay:      func(synth.Audio) { stamps = append(stamps, time.Now()) },
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pipe.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	appendAssistantLine(t, path, "first message")

	deadline := time.After(3 * time.Second)
	for len(s.Calls()) < 1 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for first narration")
		case <-time.After(5 * time.Millisecond):
		}
	}

	appendAssistantLine(t, path, "second message")
	for len(s.Calls()) < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for second narration")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if len(stamps) < 2 {
		t.Fatalf("got %d playbacks, want 2", len(stamps))
	}
	if between := stamps[1].Sub(stamps[0]); between < gap/2 {
		t.Errorf("narrations %s apart, want at least %s of pacing", between, gap/2)
	}
}
