package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"overtls-manager/core"
	"overtls-manager/internal/overtls"
)

type blockingTunnel struct{}

func (blockingTunnel) Run(ctx context.Context, _ overtls.Config) error {
	<-ctx.Done()
	return ctx.Err()
}

func exampleNode() overtls.Config {
	return overtls.Config{
		Remarks:    "A",
		TunnelPath: overtls.Single("/secret-tunnel-path/"),
		Client:     &overtls.ClientConfig{ServerHost: "example.com", ServerPort: 443},
	}
}

func newTestCLI(t *testing.T) (*CLI, *core.AppController, *bytes.Buffer) {
	t.Helper()
	keyring.MockInit()
	ac, err := core.NewAppController(t.TempDir())
	if err != nil {
		t.Fatalf("NewAppController failed: %v", err)
	}
	ac.Runner.Tunnel = blockingTunnel{}
	ac.Runner.IsElevated = func() bool { return true }
	ac.State.SystemSettings.SetInterceptionEnabled(false)
	t.Cleanup(ac.Shutdown)
	out := &bytes.Buffer{}
	return New(ac, out), ac, out
}

// TestOptionsRequested tests detecting headless requests
func TestOptionsRequested(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"Nothing", Options{}, false},
		{"Copy alone", Options{Copy: true}, false},
		{"List", Options{List: true}, true},
		{"URL", Options{URL: 1}, true},
		{"Export", Options{Export: 2, Output: "x.json"}, true},
		{"Import", Options{Import: "node.json"}, true},
		{"Paste", Options{Paste: true}, true},
		{"Run", Options{Run: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Requested(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestListAndURL tests listing nodes and printing a link
func TestListAndURL(t *testing.T) {
	c, ac, out := newTestCLI(t)
	c.ListNodes()
	if !strings.Contains(out.String(), "No nodes configured") {
		t.Errorf("Unexpected output %q", out.String())
	}

	ac.AddNode(exampleNode())
	out.Reset()
	c.ListNodes()
	if !strings.Contains(out.String(), "example.com") || !strings.Contains(out.String(), "REMARKS") {
		t.Errorf("Unexpected listing %q", out.String())
	}

	var copied string
	origWrite := clipWrite
	clipWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipWrite = origWrite })

	out.Reset()
	if err := c.PrintURL(1, true); err != nil {
		t.Fatalf("PrintURL failed: %v", err)
	}
	link := strings.TrimSpace(out.String())
	if !strings.HasPrefix(link, "ssr://") || copied != link {
		t.Errorf("Expected the printed link copied, got %q and %q", link, copied)
	}

	if err := c.PrintURL(2, false); !errors.Is(err, core.ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

// TestExportImportPaste tests moving nodes through files and the clipboard
func TestExportImportPaste(t *testing.T) {
	c, ac, _ := newTestCLI(t)
	ac.AddNode(exampleNode())
	path := filepath.Join(t.TempDir(), "node.json")

	if err := c.Execute(context.Background(), Options{Export: 1}); err == nil {
		t.Error("Expected an error for -export without -o")
	}
	if err := c.Execute(context.Background(), Options{Export: 1, Output: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if err := c.Execute(context.Background(), Options{Import: path}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if ac.Nodes.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", ac.Nodes.Len())
	}

	link, err := overtls.GenerateSSRURL(exampleNode())
	if err != nil {
		t.Fatal(err)
	}
	origRead := clipRead
	t.Cleanup(func() { clipRead = origRead })
	clipRead = func() (string, error) { return link, nil }
	if err := c.Paste(); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	clipRead = func() (string, error) { return "", errors.New("no clipboard") }
	if err := c.Paste(); err == nil {
		t.Error("Expected a clipboard error")
	}
	if ac.Nodes.Len() != 3 {
		t.Errorf("Expected 3 nodes, got %d", ac.Nodes.Len())
	}

	reloaded := core.LoadAppState(ac.StateService, ac.SecretStore)
	if len(reloaded.RemoteNodes) != 3 {
		t.Errorf("Expected 3 saved nodes, got %d", len(reloaded.RemoteNodes))
	}
}

// TestRunUntilCancelled tests running a node until the context ends
func TestRunUntilCancelled(t *testing.T) {
	c, ac, out := newTestCLI(t)
	ac.AddNode(exampleNode())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, 1) }()

	deadline := time.Now().Add(3 * time.Second)
	for !ac.Runner.Running() {
		if time.Now().After(deadline) {
			t.Fatal("Node did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if ac.Runner.Running() {
		t.Error("Node still running")
	}
	if !strings.Contains(out.String(), "Running 'A'") {
		t.Errorf("Unexpected output %q", out.String())
	}
}
