// Package jklog builds the root structured logger every component
// receives at construction, grounded on main.go's log setup (a text
// handler writing to both stderr and a log file, gated by -verbose).
package jklog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens logFilePath (creating parent directories as needed) and
// returns a *slog.Logger that writes to both stderr and that file. The
// returned io.Closer must be closed on shutdown to flush the file handle.
// If logFilePath is empty, logs go to stderr only.
func New(verbose bool, logFilePath string) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if logFilePath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("jklog: create log directory: %w", err)
	}
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("jklog: open log file: %w", err)
	}

	w := io.MultiWriter(os.Stderr, f)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
