package location

import "sync"

// Memory is an in-process history stack. SetPath pushes an entry and
// discards any forward entries; Back and Forward move through the stack
// and notify watchers.
type Memory struct {
	mu      sync.Mutex
	entries []string
	index   int
	watch   watchers
}

// NewMemory returns a history holding the single entry initial. An empty
// initial path means "/".
func NewMemory(initial string) *Memory {
	if initial == "" {
		initial = "/"
	}
	return &Memory{entries: []string{initial}}
}

// Path returns the current entry.
func (m *Memory) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// SetPath pushes path. Pushing the current path is a no-op.
func (m *Memory) SetPath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[m.index] == path {
		return nil
	}
	m.entries = append(m.entries[:m.index+1], path)
	m.index++
	return nil
}

// ReplacePath overwrites the current entry.
func (m *Memory) ReplacePath(path string) error {
	m.mu.Lock()
	m.entries[m.index] = path
	m.mu.Unlock()
	return nil
}

// Back moves one entry back. It reports false at the oldest entry.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the newest entry.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries through the history. It reports false, without
// moving, when the target is out of range.
func (m *Memory) Go(delta int) bool {
	m.mu.Lock()
	next := m.index + delta
	if delta == 0 || next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = next
	m.mu.Unlock()

	m.watch.notify()
	return true
}

// History returns a copy of the entries and the index of the current one.
func (m *Memory) History() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries...), m.index
}

// Watch registers fn to run after Back, Forward or Go moves.
func (m *Memory) Watch(fn func()) {
	m.watch.add(fn)
}
