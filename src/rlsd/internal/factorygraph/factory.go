// Package factorygraph provides dependency-aware, per-workspace cached computations.
//
// A factory declares the factories it depends on. A change reported by any dependency
// for a folder is re-fired on the factory's own change stream for the same folder, so
// changes propagate transitively through the graph. Caching factories evict the
// folder's entry before propagating.
package factorygraph

import (
	"context"
	"sync"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
)

// Factory computes a value of type T for the folder of a task context.
type Factory[T any] interface {
	Dependency
	Get(ctx context.Context, tc *taskctx.Context) (T, error)
}

// Dependency is what a factory needs to know about the factories it depends on.
type Dependency interface {
	Changes() *ChangeStream
	Dispose() error
}

// Base wires a factory to the change streams of its dependencies.
type Base struct {
	changes *ChangeStream
	before  func(entity.WorkspaceFolder)

	mu           sync.Mutex
	unsubscribes []func()
	disposed     bool
}

// NewBase creates a Base that re-fires every change of deps.
func NewBase(deps ...Dependency) *Base {
	return newBase(nil, deps)
}

func newBase(before func(entity.WorkspaceFolder), deps []Dependency) *Base {
	b := &Base{
		changes: NewChangeStream(),
		before:  before,
	}
	for _, dep := range deps {
		b.unsubscribes = append(b.unsubscribes, dep.Changes().Subscribe(b.Invalidate))
	}
	return b
}

// Changes returns the stream of folders whose value changed.
func (b *Base) Changes() *ChangeStream {
	return b.changes
}

// Invalidate reports that the value for folder changed.
func (b *Base) Invalidate(folder entity.WorkspaceFolder) {
	if b.before != nil {
		b.before(folder)
	}
	b.changes.Fire(folder)
}

// Disposed reports whether Dispose was called.
func (b *Base) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// Dispose removes all listeners and closes the change stream. It is idempotent.
func (b *Base) Dispose() error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil
	}
	b.disposed = true
	unsubscribes := b.unsubscribes
	b.unsubscribes = nil
	b.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	b.changes.Close()
	return nil
}

// FactoryFunc adapts a function into an uncached Factory.
type FactoryFunc[T any] struct {
	*Base
	fn func(ctx context.Context, tc *taskctx.Context) (T, error)
}

// NewFunc creates an uncached Factory that calls fn on every Get.
func NewFunc[T any](fn func(ctx context.Context, tc *taskctx.Context) (T, error), deps ...Dependency) *FactoryFunc[T] {
	return &FactoryFunc[T]{Base: NewBase(deps...), fn: fn}
}

// Get calls the wrapped function.
func (f *FactoryFunc[T]) Get(ctx context.Context, tc *taskctx.Context) (T, error) {
	return f.fn(ctx, tc)
}
