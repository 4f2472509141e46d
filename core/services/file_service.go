package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/platform"
)

// maxLogFileSize is the size above which the log is rotated to .old.
const maxLogFileSize = 2 * 1024 * 1024

// FileService owns the per-user directory layout and the main log file.
type FileService struct {
	ConfigDir string
	StatePath string
	LogsDir   string

	MainLogFile *os.File
}

// NewFileService prepares configDir (the OS user config dir when empty).
func NewFileService(configDir string) (*FileService, error) {
	if configDir == "" {
		configDir = platform.GetConfigDir()
	}
	if err := platform.EnsureDirectories(configDir); err != nil {
		return nil, fmt.Errorf("NewFileService: cannot create directories: %w", err)
	}
	return &FileService{
		ConfigDir: configDir,
		StatePath: platform.GetStatePath(configDir),
		LogsDir:   platform.GetLogsDir(configDir),
	}, nil
}

// MainLogPath returns the path of the application log.
func (fs *FileService) MainLogPath() string {
	return filepath.Join(fs.LogsDir, constants.MainLogFileName)
}

// OpenLogFiles points the standard logger at the rotating main log.
func (fs *FileService) OpenLogFiles() error {
	logFile, err := fs.OpenLogFileWithRotation(fs.MainLogPath())
	if err != nil {
		return fmt.Errorf("OpenLogFiles: cannot open main log file: %w", err)
	}
	log.SetOutput(logFile)
	fs.MainLogFile = logFile
	return nil
}

// CloseLogFiles restores stderr logging and closes the log file.
func (fs *FileService) CloseLogFiles() {
	if fs.MainLogFile != nil {
		log.SetOutput(os.Stderr)
		fs.MainLogFile.Close()
		fs.MainLogFile = nil
	}
}

// OpenLogFileWithRotation opens logPath for appending, rotating it first
// when it has grown past maxLogFileSize.
func (fs *FileService) OpenLogFileWithRotation(logPath string) (*os.File, error) {
	fs.CheckAndRotateLogFile(logPath)
	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// CheckAndRotateLogFile renames an oversized log to .old, replacing any
// previous backup.
func (fs *FileService) CheckAndRotateLogFile(logPath string) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}
	if info.Size() <= maxLogFileSize {
		return
	}
	oldPath := logPath + ".old"
	_ = os.Remove(oldPath)
	if err := os.Rename(logPath, oldPath); err != nil {
		log.Printf("CheckAndRotateLogFile: failed to rotate log file %s: %v", logPath, err)
		return
	}
	log.Printf("CheckAndRotateLogFile: rotated log file %s (size: %d bytes)", logPath, info.Size())
}
