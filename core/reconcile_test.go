package core

import (
	"testing"

	"overtls-manager/internal/overtls"
)

// TestPendingResultsDrain tests applying ready results and keeping pending ones
func TestPendingResultsDrain(t *testing.T) {
	list := NewNodeList([]overtls.Config{exampleNode()})
	var p PendingResults

	edited := exampleNode()
	edited.Remarks = "edited"
	added := exampleNode()
	added.Remarks = "added"

	editCh := make(chan *overtls.Config, 1)
	newCh := make(chan *overtls.Config, 1)
	cancelCh := make(chan *overtls.Config, 1)
	closedCh := make(chan *overtls.Config)
	waitingCh := make(chan *overtls.Config, 1)

	p.AddEdit(0, editCh)
	p.AddNew(newCh)
	p.AddNew(cancelCh)
	p.AddNew(closedCh)
	p.AddNew(waitingCh)

	editCh <- &edited
	newCh <- &added
	cancelCh <- nil
	close(closedCh)

	if n := p.Drain(list); n != 2 {
		t.Errorf("Expected 2 changes, got %d", n)
	}
	if p.Len() != 1 {
		t.Fatalf("Expected 1 pending receiver, got %d", p.Len())
	}
	if list.Len() != 2 {
		t.Fatalf("Expected 2 nodes, got %d", list.Len())
	}
	if got, _ := list.Get(0); got.Remarks != "edited" {
		t.Errorf("Edit not applied, got %q", got.Remarks)
	}
	if got, _ := list.Get(1); got.Remarks != "added" {
		t.Errorf("New node not appended, got %q", got.Remarks)
	}

	t.Run("Nothing ready", func(t *testing.T) {
		if n := p.Drain(list); n != 0 || p.Len() != 1 {
			t.Errorf("Expected no change and 1 pending, got %d and %d", n, p.Len())
		}
	})

	t.Run("Late result", func(t *testing.T) {
		late := exampleNode()
		late.Remarks = "late"
		waitingCh <- &late
		if n := p.Drain(list); n != 1 || p.Len() != 0 {
			t.Errorf("Expected 1 change and none pending, got %d and %d", n, p.Len())
		}
		if list.Len() != 3 {
			t.Errorf("Expected 3 nodes, got %d", list.Len())
		}
	})

	t.Run("Edit of removed node", func(t *testing.T) {
		ch := make(chan *overtls.Config, 1)
		p.AddEdit(10, ch)
		n := exampleNode()
		ch <- &n
		if got := p.Drain(list); got != 0 || p.Len() != 0 {
			t.Errorf("Expected the stale edit dropped, got %d changes and %d pending", got, p.Len())
		}
		if list.Len() != 3 {
			t.Errorf("Stale edit changed the list length to %d", list.Len())
		}
	})
}

// TestPendingSettingsDrain tests that the latest ready settings win
func TestPendingSettingsDrain(t *testing.T) {
	var p PendingSettings
	if _, ok := p.Drain(); ok {
		t.Fatal("Drain on empty pending reported settings")
	}

	first := DefaultSystemSettings()
	first.ListenPort = 1
	second := DefaultSystemSettings()
	second.ListenPort = 2

	a := make(chan *SystemSettings, 1)
	b := make(chan *SystemSettings, 1)
	cancelled := make(chan *SystemSettings, 1)
	waiting := make(chan *SystemSettings, 1)
	p.Add(a)
	p.Add(b)
	p.Add(cancelled)
	p.Add(waiting)
	a <- &first
	b <- &second
	cancelled <- nil

	got, ok := p.Drain()
	if !ok || got.ListenPort != 2 {
		t.Fatalf("Expected port 2, got %+v %v", got, ok)
	}
	if p.Len() != 1 {
		t.Errorf("Expected 1 pending receiver, got %d", p.Len())
	}
}
