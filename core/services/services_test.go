package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStateServiceLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	svc := NewStateService(path)

	var missing sample
	found, err := svc.Load(&missing)
	if found || err != nil {
		t.Fatalf("Load() on a missing file = %v, %v", found, err)
	}

	if err := svc.Save(sample{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("state file mode = %v, expected 0600", info.Mode().Perm())
	}

	var got sample
	found, err = svc.Load(&got)
	if !found || err != nil {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if got != (sample{Name: "a", Count: 2}) {
		t.Errorf("Load() = %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestStateServiceCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	var v sample
	found, err := NewStateService(path).Load(&v)
	if !found || err == nil {
		t.Errorf("Load() on a corrupt file = %v, %v", found, err)
	}
}

func TestSecretStore(t *testing.T) {
	keyring.MockInit()
	store := NewSecretStore("overtls-manager-test")

	if _, err := store.Get("listen_password"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get() on empty store error = %v, expected ErrSecretNotFound", err)
	}
	if err := store.Set("listen_password", "s3cret"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get("listen_password")
	if err != nil || got != "s3cret" {
		t.Errorf("Get() = %q, %v", got, err)
	}
	if err := store.Delete("listen_password"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete("listen_password"); err != nil {
		t.Errorf("Delete() of a missing key error = %v", err)
	}
}

func TestFileServiceRotation(t *testing.T) {
	fs, err := NewFileService(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileService() error = %v", err)
	}
	if _, err := os.Stat(fs.LogsDir); err != nil {
		t.Fatalf("logs dir not created: %v", err)
	}

	logPath := fs.MainLogPath()
	big := make([]byte, maxLogFileSize+1)
	if err := os.WriteFile(logPath, big, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := fs.OpenLogFileWithRotation(logPath)
	if err != nil {
		t.Fatalf("OpenLogFileWithRotation() error = %v", err)
	}
	defer f.Close()

	if _, err := os.Stat(logPath + ".old"); err != nil {
		t.Errorf("rotated file missing: %v", err)
	}
	info, err := os.Stat(logPath)
	if err != nil || info.Size() != 0 {
		t.Errorf("new log file = %v, %v", info, err)
	}
}
