package factorygraph

import (
	"context"
	"sync"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	rlsderrors "github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the uncached value for the folder of tc.
type ComputeFunc[T any] func(ctx context.Context, tc *taskctx.Context) (T, error)

// Caching memoizes one value per workspace folder. Concurrent Gets for a folder share a
// single computation. A change for a folder evicts its entry; a computation already in
// flight still answers its waiters but its result is not kept.
type Caching[T any] struct {
	*Base

	compute ComputeFunc[T]
	flight  singleflight.Group
	stats   tally.Scope

	mu      sync.Mutex
	entries map[string]*entry[T]
}

type entry[T any] struct {
	value    T
	resolved bool
}

// CachingOption customizes a Caching factory.
type CachingOption func(*cachingOptions)

type cachingOptions struct {
	stats tally.Scope
	deps  []Dependency
}

// WithStats records cache hits and misses in stats.
func WithStats(stats tally.Scope) CachingOption {
	return func(o *cachingOptions) {
		o.stats = stats
	}
}

// DependsOn declares the factories whose changes invalidate this one.
func DependsOn(deps ...Dependency) CachingOption {
	return func(o *cachingOptions) {
		o.deps = append(o.deps, deps...)
	}
}

// NewCaching creates a caching factory around compute.
func NewCaching[T any](compute ComputeFunc[T], opts ...CachingOption) *Caching[T] {
	o := cachingOptions{stats: tally.NoopScope}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Caching[T]{
		compute: compute,
		stats:   o.stats,
		entries: make(map[string]*entry[T]),
	}
	c.Base = newBase(c.evict, o.deps)
	return c
}

// Get returns the cached value for the folder of tc, computing it at most once at a time.
func (c *Caching[T]) Get(ctx context.Context, tc *taskctx.Context) (T, error) {
	var zero T
	if c.Disposed() {
		return zero, rlsderrors.ErrDisposed
	}

	key := tc.Folder().Key()
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.resolved {
		c.mu.Unlock()
		c.stats.Counter("hit").Inc(1)
		return e.value, nil
	}
	c.mu.Unlock()

	// The computation outlives a single caller; each waiter still honours its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && e.resolved {
			c.mu.Unlock()
			return e.value, nil
		}
		c.stats.Counter("miss").Inc(1)
		e := &entry[T]{}
		c.entries[key] = e
		c.mu.Unlock()

		v, err := c.compute(flightCtx, tc)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.entries[key] == e {
			if err != nil {
				delete(c.entries, key)
			} else {
				e.value = v
				e.resolved = true
			}
		}
		return v, err
	})

	select {
	case res := <-ch:
		v, _ := res.Val.(T)
		return v, res.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Forget drops the entry of folder without notifying dependents.
func (c *Caching[T]) Forget(folder entity.WorkspaceFolder) {
	c.drop(folder.Key())
}

// Cached reports whether a resolved value is held for folder.
func (c *Caching[T]) Cached(folder entity.WorkspaceFolder) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[folder.Key()]
	return ok && e.resolved
}

// Dispose tears down the listeners and drops every entry.
func (c *Caching[T]) Dispose() error {
	err := c.Base.Dispose()
	c.mu.Lock()
	c.entries = make(map[string]*entry[T])
	c.mu.Unlock()
	return err
}

func (c *Caching[T]) evict(folder entity.WorkspaceFolder) {
	c.stats.Counter("evict").Inc(1)
	c.drop(folder.Key())
}

func (c *Caching[T]) drop(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.flight.Forget(key)
}
