package config

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := &Config{
		ServerURL:       "http://example.com:9090",
		DefaultProfile:  "work",
		PollIntervalSec: 15,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load() should fail for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want default", cfg.ServerURL)
	}
	if cfg.PollIntervalSec != DefaultPollIntervalSec {
		t.Errorf("PollIntervalSec = %d, want default", cfg.PollIntervalSec)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{ServerURL: "http://x", PollIntervalSec: -1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	cfg = LoadOrDefault(path)
	if cfg.ServerURL != "http://x" {
		t.Errorf("ServerURL = %q, want http://x", cfg.ServerURL)
	}
	if cfg.PollIntervalSec != DefaultPollIntervalSec {
		t.Errorf("PollIntervalSec = %d, want default for non-positive", cfg.PollIntervalSec)
	}
}
