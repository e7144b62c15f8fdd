// Package taskctx carries the task nesting of a factory computation for one workspace folder.
package taskctx

import (
	"context"
	"strings"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
)

// LabelSeparator joins nested task names into a progress label.
const LabelSeparator = " / "

// Reporter shows a scoped progress report for a running task.
type Reporter interface {
	// Begin starts reporting label and returns a function that ends the report.
	Begin(ctx context.Context, folder entity.WorkspaceFolder, label string) (end func())
}

// Context is an immutable stack of task names for a workspace folder.
type Context struct {
	parent   *Context
	folder   entity.WorkspaceFolder
	taskName string
	reporter Reporter
	stats    tally.Scope
}

// Option customizes a root Context.
type Option func(*Context)

// WithReporter reports every sub task through r.
func WithReporter(r Reporter) Option {
	return func(c *Context) {
		c.reporter = r
	}
}

// WithStats records task timings in stats.
func WithStats(stats tally.Scope) Option {
	return func(c *Context) {
		c.stats = stats
	}
}

// Root creates a Context without a parent.
func Root(folder entity.WorkspaceFolder, name string, opts ...Option) *Context {
	c := &Context{
		folder:   folder,
		taskName: name,
		reporter: nopReporter{},
		stats:    tally.NoopScope,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Folder returns the workspace folder the task runs for.
func (c *Context) Folder() entity.WorkspaceFolder {
	return c.folder
}

// Name returns the name of the innermost task.
func (c *Context) Name() string {
	return c.taskName
}

// Parent returns the enclosing task, or nil for a root.
func (c *Context) Parent() *Context {
	return c.parent
}

// Child returns a nested Context without running anything.
func (c *Context) Child(name string) *Context {
	return &Context{
		parent:   c,
		folder:   c.folder,
		taskName: name,
		reporter: c.reporter,
		stats:    c.stats,
	}
}

// WithFolder returns a copy of c bound to another folder, keeping the task stack.
func (c *Context) WithFolder(folder entity.WorkspaceFolder) *Context {
	cp := *c
	cp.folder = folder
	return &cp
}

// Tasks returns the task names from the root to c.
func (c *Context) Tasks() []string {
	var tasks []string
	for cur := c; cur != nil; cur = cur.parent {
		tasks = append(tasks, cur.taskName)
	}
	for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	}
	return tasks
}

// Label joins all task names from the root to c.
func (c *Context) Label() string {
	return strings.Join(c.Tasks(), LabelSeparator)
}

// SubTask runs op in a child Context named name while a progress report for the
// child's label is shown.
func SubTask[T any](ctx context.Context, c *Context, name string, op func(context.Context, *Context) (T, error)) (T, error) {
	child := c.Child(name)
	end := c.reporter.Begin(ctx, c.folder, child.Label())
	defer end()
	return op(ctx, child)
}

// Timed runs op and records its duration in a timer called name.
func Timed[T any](ctx context.Context, c *Context, name string, op func(context.Context) (T, error)) (T, error) {
	sw := c.stats.Timer(name).Start()
	defer sw.Stop()
	return op(ctx)
}

type nopReporter struct{}

func (nopReporter) Begin(context.Context, entity.WorkspaceFolder, string) func() {
	return func() {}
}
