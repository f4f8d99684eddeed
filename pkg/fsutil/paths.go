package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nikolchaa/resuma/pkg/platform"
)

const (
	// AppNamespace is the directory every asset category lives under.
	AppNamespace = "com.resuma.app"
	// ConfigDirName is the directory holding config.yaml.
	ConfigDirName = "resuma"
)

// GetBaseDataDir returns the platform-specific base data directory
// On Linux: $XDG_DATA_HOME or ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %APPDATA% (roaming, matching where desktop shells keep app data)
func GetBaseDataDir() (string, error) {
	switch runtime.GOOS {
	case platform.OSWindows:
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return localAppData, nil
		}
		return "", errors.New("APPDATA environment variable not set")

	case platform.OSDarwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	default: // Linux, BSD, etc.
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return xdgDataHome, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// GetConfigDir returns <user config dir>/resuma.
func GetConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigDirName), nil
}
