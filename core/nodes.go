package core

import (
	"fmt"

	"overtls-manager/internal/overtls"
)

// NodeList is the ordered collection of node profiles shown in the table.
// It is owned by the GUI goroutine and is not safe for concurrent use.
type NodeList struct {
	nodes []overtls.Config
}

// NewNodeList copies nodes into a new list.
func NewNodeList(nodes []overtls.Config) *NodeList {
	l := &NodeList{nodes: make([]overtls.Config, 0, len(nodes))}
	for _, n := range nodes {
		l.nodes = append(l.nodes, n.Clone())
	}
	return l
}

// Len returns the number of nodes.
func (l *NodeList) Len() int {
	return len(l.nodes)
}

// Get returns a copy of node i.
func (l *NodeList) Get(i int) (overtls.Config, error) {
	if i < 0 || i >= len(l.nodes) {
		return overtls.Config{}, fmt.Errorf("%w: index %d of %d", ErrNodeNotFound, i, len(l.nodes))
	}
	return l.nodes[i].Clone(), nil
}

// Add appends a node and returns its index.
func (l *NodeList) Add(n overtls.Config) int {
	l.nodes = append(l.nodes, n.Clone())
	return len(l.nodes) - 1
}

// Replace overwrites node i.
func (l *NodeList) Replace(i int, n overtls.Config) error {
	if i < 0 || i >= len(l.nodes) {
		return fmt.Errorf("%w: index %d of %d", ErrNodeNotFound, i, len(l.nodes))
	}
	l.nodes[i] = n.Clone()
	return nil
}

// Remove deletes node i, shifting the following nodes up.
func (l *NodeList) Remove(i int) error {
	if i < 0 || i >= len(l.nodes) {
		return fmt.Errorf("%w: index %d of %d", ErrNodeNotFound, i, len(l.nodes))
	}
	l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
	return nil
}

// Snapshot returns a deep copy of all nodes, for persistence.
func (l *NodeList) Snapshot() []overtls.Config {
	out := make([]overtls.Config, 0, len(l.nodes))
	for _, n := range l.nodes {
		out = append(out, n.Clone())
	}
	return out
}
