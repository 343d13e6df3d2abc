package component

import (
	"sync"
	"time"
)

type timerSet struct {
	mu     sync.Mutex
	nextID int
	stops  map[int]func()
	closed bool
}

// add registers stop and returns its id. It reports false once the set
// is closed.
func (s *timerSet) add(stop func()) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	if s.stops == nil {
		s.stops = make(map[int]func())
	}
	s.nextID++
	s.stops[s.nextID] = stop
	return s.nextID, true
}

// set replaces the stop function of a timer that has not fired yet. It
// reports false when the timer is gone.
func (s *timerSet) set(id int, stop func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stops[id]; !ok {
		return false
	}
	s.stops[id] = stop
	return true
}

func (s *timerSet) remove(id int) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stop, ok := s.stops[id]
	delete(s.stops, id)
	return stop, ok
}

// drain removes every timer. After close, add refuses new timers.
func (s *timerSet) drain(closing bool) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if closing {
		s.closed = true
	}
	stops := make([]func(), 0, len(s.stops))
	for _, stop := range s.stops {
		stops = append(stops, stop)
	}
	s.stops = nil
	return stops
}

func (s *timerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stops)
}

// SetTimeout runs fn once after d on its own goroutine. The returned id
// can be passed to ClearTimer. Timers are not started on an unloaded
// instance.
func (b *Base) SetTimeout(d time.Duration, fn func()) int {
	if b.unloaded.Load() {
		return 0
	}
	id, ok := b.timers.add(nil)
	if !ok {
		return 0
	}
	t := time.AfterFunc(d, func() {
		if _, ok := b.timers.remove(id); ok {
			fn()
		}
	})
	if !b.timers.set(id, func() { t.Stop() }) {
		// Fired already, or drained by an unload.
		t.Stop()
	}
	return id
}

// SetInterval runs fn every d until the instance is unloaded or the timer
// is cleared. When runOnStart is set fn also runs once synchronously.
func (b *Base) SetInterval(d time.Duration, fn func(), runOnStart bool) int {
	if b.unloaded.Load() {
		return 0
	}
	if runOnStart {
		fn()
	}

	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once
	id, ok := b.timers.add(func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	})
	if !ok {
		ticker.Stop()
		return 0
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return id
}

// ClearTimer stops the timer with the given id.
func (b *Base) ClearTimer(id int) {
	if stop, ok := b.timers.remove(id); ok && stop != nil {
		stop()
	}
}

// ClearTimers stops every timer the instance owns.
func (b *Base) ClearTimers() {
	stopAll(b.timers.drain(false))
}

// closeTimers stops every timer and refuses new ones.
func (b *Base) closeTimers() {
	stopAll(b.timers.drain(true))
}

func stopAll(stops []func()) {
	for _, stop := range stops {
		if stop != nil {
			stop()
		}
	}
}

// Timers returns the number of timers still pending.
func (b *Base) Timers() int {
	return b.timers.len()
}
