package factorygraph

import (
	"slices"
	"sync"

	"github.com/uber/rust-lsp/src/rlsd/entity"
)

// ChangeStream fans change events for a workspace folder out to its listeners.
type ChangeStream struct {
	mu        sync.Mutex
	listeners map[int]func(entity.WorkspaceFolder)
	next      int
	closed    bool
}

// NewChangeStream creates an open ChangeStream.
func NewChangeStream() *ChangeStream {
	return &ChangeStream{
		listeners: make(map[int]func(entity.WorkspaceFolder)),
	}
}

// Subscribe registers fn and returns a function removing it again.
// Subscribing to a closed stream is a no-op.
func (s *ChangeStream) Subscribe(fn func(entity.WorkspaceFolder)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}

	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Fire notifies every listener, in subscription order, that folder changed.
func (s *ChangeStream) Fire(folder entity.WorkspaceFolder) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(entity.WorkspaceFolder), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(folder)
	}
}

// Close drops all listeners. Closing twice is a no-op.
func (s *ChangeStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = map[int]func(entity.WorkspaceFolder){}
}

// Len returns the number of registered listeners.
func (s *ChangeStream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
