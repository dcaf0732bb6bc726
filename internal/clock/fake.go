package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose waits complete immediately. Every After call
// advances the clock by the requested duration and is recorded, so tests
// can assert how long the code would have waited.
//
// Fake is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waits   []time.Duration
}

// NewFake returns a Fake initialized to the given time.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// After advances the clock by d and returns a channel that already holds
// the new time.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.current = f.current.Add(d)
	}
	f.waits = append(f.waits, d)
	ch := make(chan time.Time, 1)
	ch <- f.current
	return ch
}

// Advance moves the clock forward by d without recording a wait.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

// Waits returns a copy of every duration passed to After.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.waits))
	copy(out, f.waits)
	return out
}

// Waited returns the total duration passed to After.
func (f *Fake) Waited() time.Duration {
	var total time.Duration
	for _, d := range f.Waits() {
		total += d
	}
	return total
}
