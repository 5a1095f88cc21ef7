package jklog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_StderrOnly(t *testing.T) {
	logger, closer, err := New(false, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jokolay.log")
	logger, closer, err := New(true, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log file to contain output")
	}
}
