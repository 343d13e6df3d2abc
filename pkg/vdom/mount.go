package vdom

import "sync"

// Mount is the host node tree the reconciler renders into.
//
// Mutations take the write lock; Read takes the read lock so that a tree can
// be serialized from another goroutine while no splice is in progress.
// Observers run after every mutation, while the write lock is released.
type Mount struct {
	mu        sync.RWMutex
	root      *VNode
	observers []func(root *VNode)
}

// NewMount creates an empty mount.
func NewMount() *Mount {
	return &Mount{}
}

// Root returns the current root node.
func (m *Mount) Root() *VNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Read calls fn with the root node while holding the read lock.
func (m *Mount) Read(fn func(root *VNode)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.root)
}

// SetRoot replaces the whole mounted tree.
func (m *Mount) SetRoot(node *VNode) {
	m.mu.Lock()
	m.root = node
	m.mu.Unlock()
	m.notify()
}

// Replace swaps the node old for next wherever old is mounted. A nil next
// removes old from its parent. It reports whether old was found.
func (m *Mount) Replace(old, next *VNode) bool {
	if old == nil {
		return false
	}

	m.mu.Lock()
	found := false
	if m.root == old {
		m.root = next
		found = true
	} else {
		found = replaceIn(m.root, old, next)
	}
	m.mu.Unlock()

	if found {
		m.notify()
	}
	return found
}

// Contains reports whether node is currently mounted.
func (m *Mount) Contains(node *VNode) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root.Contains(node)
}

// Observe registers fn to be called with the root after every mutation.
func (m *Mount) Observe(fn func(root *VNode)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

func (m *Mount) notify() {
	m.mu.RLock()
	observers := make([]func(*VNode), len(m.observers))
	copy(observers, m.observers)
	root := m.root
	m.mu.RUnlock()

	for _, fn := range observers {
		fn(root)
	}
}

// replaceIn walks parent depth-first looking for old among its descendants.
func replaceIn(parent, old, next *VNode) bool {
	if parent == nil {
		return false
	}
	for i, child := range parent.Children {
		if child == old {
			if next == nil {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			} else {
				parent.Children[i] = next
			}
			return true
		}
		if replaceIn(child, old, next) {
			return true
		}
	}
	return false
}
