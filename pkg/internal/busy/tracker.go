package busy

import "sync"

// Tracker counts in-flight requests. The legacy front end toggled one shared
// loading flag per request, so overlapping requests could dismiss the
// indicator early; counting keeps it up until the last request settles.
type Tracker struct {
	mu       sync.Mutex
	inFlight int
	onChange func(busy bool)
}

func NewTracker(onChange func(busy bool)) *Tracker {
	return &Tracker{onChange: onChange}
}

func (t *Tracker) Add() {
	t.mu.Lock()
	t.inFlight++
	first := t.inFlight == 1
	t.mu.Unlock()

	if first && t.onChange != nil {
		t.onChange(true)
	}
}

func (t *Tracker) Done() {
	t.mu.Lock()
	if t.inFlight > 0 {
		t.inFlight--
	}
	last := t.inFlight == 0
	t.mu.Unlock()

	if last && t.onChange != nil {
		t.onChange(false)
	}
}

func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight > 0
}
