package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigPath returns the default path for the proteus config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "proteus", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "proteus")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "proteus")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "proteus")
		}
		return filepath.Join(home, ".config", "proteus")
	}
}

// DefaultModelsPath returns the default path for the proteus models directory.
func DefaultModelsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "proteus", "models")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "proteus", "models")
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "proteus", "models")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "proteus", "models")
		}
		return filepath.Join(home, ".cache", "proteus", "models")
	}
}
