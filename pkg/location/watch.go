package location

import "sync"

// watchers fans a change out to every registered callback.
type watchers struct {
	mu  sync.Mutex
	fns []func()
}

func (w *watchers) add(fn func()) {
	w.mu.Lock()
	w.fns = append(w.fns, fn)
	w.mu.Unlock()
}

func (w *watchers) notify() {
	w.mu.Lock()
	fns := append([]func(){}, w.fns...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
