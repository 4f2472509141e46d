//go:build windows

package platform

import (
	"testing"

	"golang.org/x/sys/windows"
)

// TestCommandLine tests that relaunch arguments survive quoting
func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Empty", nil},
		{"Plain", []string{"-list"}},
		{"Space in path", []string{"-config", `C:\My Dir`}},
		{"Quotes and trailing backslash", []string{`say "hi"`, `C:\dir\`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := commandLine(tt.args)
			if len(tt.args) == 0 {
				if line != "" {
					t.Errorf("Expected an empty line, got %q", line)
				}
				return
			}
			got, err := windows.DecomposeCommandLine("overtls-manager.exe " + line)
			if err != nil {
				t.Fatalf("DecomposeCommandLine() error = %v", err)
			}
			got = got[1:]
			if len(got) != len(tt.args) {
				t.Fatalf("Expected %q, got %q", tt.args, got)
			}
			for i := range got {
				if got[i] != tt.args[i] {
					t.Errorf("Expected %q, got %q", tt.args, got)
				}
			}
		})
	}
}
