// Package mailbox hands values from an asynchronous producer to a polling
// consumer with last-value-wins semantics.
package mailbox

import (
	"sync"
	"sync/atomic"
)

// Slot is a single-value buffer.
//
// Publish overwrites whatever the consumer has not taken yet; Take returns the
// newest value at most once. There is no queue and no back-pressure: a slow
// consumer only ever sees the latest value and the overwritten ones are counted
// as drops.
type Slot[T any] struct {
	mu    sync.Mutex
	value T
	full  bool

	published atomic.Uint64
	drops     atomic.Uint64
}

// Publish stores v, replacing an unconsumed value. Never blocks on the consumer.
func (s *Slot[T]) Publish(v T) {
	s.mu.Lock()
	if s.full {
		s.drops.Add(1)
	}
	s.value = v
	s.full = true
	s.mu.Unlock()

	s.published.Add(1)
}

// Take returns the newest unconsumed value, or false if nothing new arrived
// since the previous Take.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if !s.full {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.full = false
	return v, true
}

// Reset discards an unconsumed value without counting it as a drop.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	var zero T
	s.value = zero
	s.full = false
	s.mu.Unlock()
}

// Stats reports how many values were published and how many were overwritten
// before the consumer saw them.
func (s *Slot[T]) Stats() (published, dropped uint64) {
	return s.published.Load(), s.drops.Load()
}
