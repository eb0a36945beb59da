package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog configures the default logger. Logs go to stderr so they never mix
// with command output; NARRATOR_LOGFILE redirects them to a file instead.
func setupLog() (func() error, error) {
	log.SetTimeFormat(time.Kitchen)
	log.SetOutput(os.Stderr)

	if path := os.Getenv("NARRATOR_LOGFILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}
