package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".zapweb", "profiles", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestDBPath(t *testing.T) {
	got := DBPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "zapweb.db")) {
		t.Errorf("DBPath(test) = %q, want suffix profiles/test/zapweb.db", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("test", "logs", "zapweb.log")) {
		t.Errorf("LogPath(test) = %q, want suffix test/logs/zapweb.log", got)
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath()
	if !strings.HasSuffix(got, filepath.Join(".zapweb", "config.toml")) {
		t.Errorf("ConfigPath() = %q, want suffix .zapweb/config.toml", got)
	}
}
