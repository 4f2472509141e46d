package platform

import (
	"os"
	"path/filepath"
	"runtime"

	"overtls-manager/internal/constants"
)

// GetConfigDir returns the per-user directory holding the app state and logs.
// Falls back to the working directory when the OS has no user config dir.
func GetConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.Getwd()
	}
	return filepath.Join(base, constants.AppDirName)
}

// GetStatePath returns the path to the persisted app state (config.json).
func GetStatePath(configDir string) string {
	return filepath.Join(configDir, constants.StateFileName)
}

// GetLogsDir returns the path to logs directory
func GetLogsDir(configDir string) string {
	return filepath.Join(configDir, constants.LogsDirName)
}

// EnsureDirectories creates necessary directories if they don't exist
func EnsureDirectories(configDir string) error {
	dirs := []string{
		configDir,
		GetLogsDir(configDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// HostOSName returns a human readable name of the running OS, used in the window title.
func HostOSName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	case "linux":
		return "Linux"
	default:
		return "Unknown OS"
	}
}

// HomeDir returns the user's home directory or the working directory.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	wd, _ := os.Getwd()
	return wd
}
