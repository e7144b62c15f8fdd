package clientworkspace

import (
	"context"
	"sync"
)

// Singleton holds one process-wide instance of T, created on first use.
// A request with a different key tears the instance down and creates a new one.
type Singleton[T any] struct {
	mu       sync.Mutex
	key      string
	value    T
	ok       bool
	teardown func(T)
}

// NewSingleton returns an empty Singleton. teardown may be nil.
func NewSingleton[T any](teardown func(T)) *Singleton[T] {
	if teardown == nil {
		teardown = func(T) {}
	}
	return &Singleton[T]{teardown: teardown}
}

// Get returns the instance for key, creating it with init when there is none or the key changed.
// A failed init leaves the Singleton empty.
func (s *Singleton[T]) Get(ctx context.Context, key string, init func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ok && s.key == key {
		return s.value, nil
	}
	s.teardownLocked()

	value, err := init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.key, s.value, s.ok = key, value, true
	return value, nil
}

// Teardown releases the instance, if any.
func (s *Singleton[T]) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

// Release empties the Singleton without teardown when match reports true for the instance.
func (s *Singleton[T]) Release(match func(T) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok || !match(s.value) {
		return false
	}
	var zero T
	s.key, s.value, s.ok = "", zero, false
	return true
}

func (s *Singleton[T]) teardownLocked() {
	if !s.ok {
		return
	}
	s.teardown(s.value)
	var zero T
	s.key, s.value, s.ok = "", zero, false
}
