// Package profile owns the on-disk layout under ~/.zapweb and profile
// name resolution.
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.zapweb.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".zapweb")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// DBPath returns the app-owned zapweb.db path.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "zapweb.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "zapweb.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
