package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StateService reads and writes the JSON state file. It knows nothing about
// the shape of the state; callers pass their own value.
type StateService struct {
	path string
	mu   sync.Mutex
}

// NewStateService creates a service for the file at path.
func NewStateService(path string) *StateService {
	return &StateService{path: path}
}

// Path returns the state file location.
func (s *StateService) Path() string {
	return s.path
}

// Load decodes the state file into v. found is false when the file does not
// exist; v is then untouched and err is nil.
func (s *StateService) Load(v interface{}) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Load: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("Load: %s is corrupt: %w", s.path, err)
	}
	return true, nil
}

// Save writes v as indented JSON. The file is replaced atomically so a
// crash mid-write keeps the previous state.
func (s *StateService) Save(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("Save: failed to serialize state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("Save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Save: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Save: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
