package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "zapweb.log")

	logger, err := New(path, "main")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"profile":"main"`) {
		t.Errorf("log line missing profile field: %s", data)
	}
}

func TestNewFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zapweb.log")

	logger, err := NewFileOnly(path, "work")
	if err != nil {
		t.Fatalf("NewFileOnly() error = %v", err)
	}
	logger.Warn("standalone")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "standalone") {
		t.Errorf("log line missing message: %s", data)
	}
}
