package synth

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Exec synthesizes speech by running a local command (piper-style) that
// reads the text on stdin and writes raw PCM16 mono to stdout. A fresh
// process is used per request so cancellation can simply kill it.
type Exec struct {
	command    string
	args       []string
	sampleRate int
	log        *log.Logger
}

// NewExec creates a subprocess-backed synthesizer.
func NewExec(command string, args []string, sampleRate int, logger *log.Logger) *Exec {
	if logger == nil {
		logger = log.Default()
	}
	return &Exec{
		command:    command,
		args:       args,
		sampleRate: sampleRate,
		log:        logger.With("component", "synth", "engine", "exec"),
	}
}

// Name implements Synthesizer.
func (e *Exec) Name() string { return "exec" }

// Available reports whether the configured command can be found.
func (e *Exec) Available() bool {
	_, err := exec.LookPath(e.command)
	return err == nil
}

// Synthesize implements Synthesizer.
func (e *Exec) Synthesize(ctx context.Context, text string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = strings.NewReader(text + "\n")

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return Audio{}, fmt.Errorf("%w: %s: %s", ErrSynthesisFailed, e.command, exitErr.Stderr)
		}
		return Audio{}, fmt.Errorf("%w: %s: %v", ErrSynthesisFailed, e.command, err)
	}
	if len(out) == 0 {
		return Audio{}, fmt.Errorf("%w: %s produced no audio", ErrSynthesisFailed, e.command)
	}

	e.log.Debug("synthesized speech", "command", e.command, "chars", len(text), "bytes", len(out))

	return Audio{Data: out, SampleRate: e.sampleRate, Channels: 1}, nil
}
