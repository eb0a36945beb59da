package synth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"
)

func TestAudioDuration(t *testing.T) {
	tests := []struct {
		name  string
		audio Audio
		want  time.Duration
	}{
		{
			name:  "one second mono 22050",
			audio: Audio{Data: make([]byte, 22050*2), SampleRate: 22050, Channels: 1},
			want:  time.Second,
		},
		{
			name:  "one second mono 24000",
			audio: Audio{Data: make([]byte, 24000*2), SampleRate: 24000, Channels: 1},
			want:  time.Second,
		},
		{
			name:  "stereo halves the duration",
			audio: Audio{Data: make([]byte, 22050*2), SampleRate: 22050, Channels: 2},
			want:  500 * time.Millisecond,
		},
		{name: "zero sample rate", audio: Audio{Data: make([]byte, 100)}, want: 0},
		{name: "empty", audio: Audio{SampleRate: 22050, Channels: 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.audio.Duration(); got != tt.want {
				t.Errorf("Duration() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMockSynthesize(t *testing.T) {
	m := &Mock{}

	audio, err := m.Synthesize(context.Background(), "roughly ten words of text to make some audio here")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if audio.SampleRate != 22050 || audio.Channels != 1 {
		t.Errorf("format = %d Hz / %d ch, want 22050 Hz mono", audio.SampleRate, audio.Channels)
	}
	if len(audio.Data) == 0 {
		t.Error("no audio data generated")
	}
	if audio.Duration() <= 0 {
		t.Error("Duration() = 0, want positive")
	}

	if _, err := m.Synthesize(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Synthesize(\"\") error = %v, want ErrEmptyText", err)
	}

	if calls := m.Calls(); len(calls) != 1 {
		t.Errorf("Calls() = %v, want the one non-empty request", calls)
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	pcm := make([]byte, 4410) // 100ms at 22050 Hz

	var gotPath, gotKey, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotFormat = r.URL.Query().Get("output_format")
		_, _ = w.Write(pcm)
	}))
	defer srv.Close()

	s := NewElevenLabs("test-key", "voice-1", "model-1", nil)
	s.baseURL = srv.URL

	audio, err := s.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if gotPath != "/v1/text-to-speech/voice-1" {
		t.Errorf("request path = %q, want /v1/text-to-speech/voice-1", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q, want test-key", gotKey)
	}
	if gotFormat != "pcm_22050" {
		t.Errorf("output_format = %q, want pcm_22050", gotFormat)
	}
	if audio.SampleRate != 22050 || audio.Channels != 1 {
		t.Errorf("format = %d Hz / %d ch, want 22050 Hz mono", audio.SampleRate, audio.Channels)
	}
	if len(audio.Data) != len(pcm) {
		t.Errorf("audio size = %d, want %d", len(audio.Data), len(pcm))
	}
}

func TestElevenLabsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewElevenLabs("bad-key", "voice-1", "model-1", nil)
	s.baseURL = srv.URL

	if _, err := s.Synthesize(context.Background(), "hello"); !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("Synthesize() error = %v, want ErrSynthesisFailed", err)
	}
}

func TestExecSynthesize(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	// cat echoes its stdin, which stands in for generated PCM.
	e := NewExec("cat", nil, 22050, nil)
	if !e.Available() {
		t.Fatal("Available() = false for cat")
	}

	audio, err := e.Synthesize(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio.Data) != "some text\n" {
		t.Errorf("output = %q, want the stdin echoed back", audio.Data)
	}
	if audio.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", audio.SampleRate)
	}
}

func TestExecCommandMissing(t *testing.T) {
	e := NewExec("definitely-not-a-real-binary-xyz", nil, 22050, nil)
	if e.Available() {
		t.Fatal("Available() = true for a missing binary")
	}
	if _, err := e.Synthesize(context.Background(), "hi"); err == nil {
		t.Error("Synthesize() error = nil, want failure for missing binary")
	}
}
