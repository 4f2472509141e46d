package process

import "testing"

func TestFindOthersByName(t *testing.T) {
	procs := []ProcessInfo{
		{PID: 1, Name: "init"},
		{PID: 10, Name: "overtls-manager-gui"},
		{PID: 11, Name: "OverTLS-Manager-GUI"},
		{PID: 12, Name: "overtls-manager"}, // truncated to 15 chars by the kernel
		{PID: 13, Name: ""},
	}

	t.Run("excludes self and unrelated", func(t *testing.T) {
		got := FindOthersByName(procs, "overtls-manager-gui", 10)
		if len(got) != 2 {
			t.Fatalf("Expected 2 matches, got %d: %+v", len(got), got)
		}
		if got[0].PID != 11 || got[1].PID != 12 {
			t.Errorf("Unexpected matches: %+v", got)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		if got := FindOthersByName(procs, "something-else", 0); len(got) != 0 {
			t.Errorf("Expected no matches, got %+v", got)
		}
	})
}
