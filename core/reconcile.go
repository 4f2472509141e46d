package core

import (
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
)

// AppendTarget marks a pending node result that adds a new row.
const AppendTarget = -1

type pendingNode struct {
	target int
	result <-chan *overtls.Config
}

// PendingResults holds the outstanding node dialog receivers. Each receiver
// yields at most one value: a node to apply, or nil when the dialog was
// cancelled. Only the GUI goroutine touches it.
type PendingResults struct {
	items []pendingNode
}

// AddEdit registers a dialog editing the node at index.
func (p *PendingResults) AddEdit(index int, result <-chan *overtls.Config) {
	p.items = append(p.items, pendingNode{target: index, result: result})
}

// AddNew registers a dialog creating a node.
func (p *PendingResults) AddNew(result <-chan *overtls.Config) {
	p.items = append(p.items, pendingNode{target: AppendTarget, result: result})
}

// Len returns the number of receivers not yet resolved.
func (p *PendingResults) Len() int {
	return len(p.items)
}

// Drain polls every receiver once without blocking. Ready results are
// applied to list and their receivers dropped; cancelled or closed
// receivers are dropped silently; the rest are kept. It returns the number
// of nodes changed.
func (p *PendingResults) Drain(list *NodeList) int {
	changed := 0
	kept := p.items[:0]
	for _, item := range p.items {
		select {
		case node, ok := <-item.result:
			if !ok || node == nil {
				continue
			}
			if item.target == AppendTarget {
				list.Add(*node)
				changed++
				continue
			}
			if err := list.Replace(item.target, *node); err != nil {
				debuglog.WarnLog("Drain: edited node dropped: %v", err)
				continue
			}
			changed++
		default:
			kept = append(kept, item)
		}
	}
	clear(p.items[len(kept):])
	p.items = kept
	return changed
}

// PendingSettings holds outstanding settings dialog receivers.
type PendingSettings struct {
	items []<-chan *SystemSettings
}

// Add registers a settings dialog.
func (p *PendingSettings) Add(result <-chan *SystemSettings) {
	p.items = append(p.items, result)
}

// Len returns the number of receivers not yet resolved.
func (p *PendingSettings) Len() int {
	return len(p.items)
}

// Drain polls every receiver once and returns the last ready settings, if any.
func (p *PendingSettings) Drain() (*SystemSettings, bool) {
	var latest *SystemSettings
	kept := p.items[:0]
	for _, ch := range p.items {
		select {
		case s, ok := <-ch:
			if ok && s != nil {
				latest = s
			}
		default:
			kept = append(kept, ch)
		}
	}
	clear(p.items[len(kept):])
	p.items = kept
	return latest, latest != nil
}
