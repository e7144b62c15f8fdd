package clientworkspace

import (
	"sync"

	"github.com/uber/rust-lsp/src/rlsd/entity"
)

// StateCell holds the session state of one workspace and pushes every change to its observers.
// Observers run while the cell is locked and must not call back into it.
type StateCell struct {
	mu        sync.Mutex
	state     entity.SessionState
	observers map[int]func(entity.SessionState)
	next      int
}

// NewStateCell returns a cell in the standby state.
func NewStateCell() *StateCell {
	return &StateCell{
		state:     entity.StandbyState(),
		observers: make(map[int]func(entity.SessionState)),
	}
}

// Get returns the current state.
func (c *StateCell) Get() entity.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set stores s and notifies the observers. It reports false, without notifying, when s is the current state.
func (c *StateCell) Set(s entity.SessionState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == s {
		return false
	}
	c.state = s
	for i := 0; i < c.next; i++ {
		if fn, ok := c.observers[i]; ok {
			fn(s)
		}
	}
	return true
}

// Observe registers fn for every future change and returns the function removing it.
func (c *StateCell) Observe(fn func(entity.SessionState)) (dispose func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.observers[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.observers, id)
		})
	}
}

// Clear removes every observer.
func (c *StateCell) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = make(map[int]func(entity.SessionState))
}
