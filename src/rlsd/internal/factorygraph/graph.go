package factorygraph

import (
	"sync"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	"go.uber.org/multierr"
)

// Forgetter holds per-folder state that is released when the folder closes.
type Forgetter interface {
	Forget(folder entity.WorkspaceFolder)
}

// Graph owns the factories of the daemon.
type Graph struct {
	mu        sync.Mutex
	factories []Dependency
	disposed  bool
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add registers factories so that Forget and Dispose reach them.
func (g *Graph) Add(factories ...Dependency) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.factories = append(g.factories, factories...)
}

// Forget releases the state every factory holds for folder.
func (g *Graph) Forget(folder entity.WorkspaceFolder) {
	g.mu.Lock()
	factories := append([]Dependency(nil), g.factories...)
	g.mu.Unlock()

	for _, f := range factories {
		if forgetter, ok := f.(Forgetter); ok {
			forgetter.Forget(folder)
		}
	}
}

// Dispose disposes every factory in reverse registration order.
func (g *Graph) Dispose() error {
	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		return nil
	}
	g.disposed = true
	factories := g.factories
	g.factories = nil
	g.mu.Unlock()

	var err error
	for i := len(factories) - 1; i >= 0; i-- {
		err = multierr.Append(err, factories[i].Dispose())
	}
	return err
}
