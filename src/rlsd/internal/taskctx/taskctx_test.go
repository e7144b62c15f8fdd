package taskctx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
)

type recordingReporter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingReporter) Begin(_ context.Context, folder entity.WorkspaceFolder, label string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "begin "+folder.Name+": "+label)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, "end "+label)
	}
}

func TestTasks(t *testing.T) {
	folder := entity.NewWorkspaceFolder("/home/user/project", "")
	root := Root(folder, "metadata")

	assert.Nil(t, root.Parent())
	assert.Equal(t, []string{"metadata"}, root.Tasks())
	assert.Equal(t, "metadata", root.Label())
	assert.Equal(t, folder, root.Folder())

	child := root.Child("toolchain").Child("rustup show")
	assert.Equal(t, []string{"metadata", "toolchain", "rustup show"}, child.Tasks())
	assert.Equal(t, "metadata / toolchain / rustup show", child.Label())
	assert.Equal(t, "rustup show", child.Name())
	assert.Equal(t, "toolchain", child.Parent().Name())
	assert.Equal(t, []string{"metadata"}, root.Tasks(), "parents are never modified")

	nested := child.WithFolder(folder.Nested("/home/user/project/crates/a"))
	assert.Equal(t, "project/crates/a", nested.Folder().Name)
	assert.Equal(t, child.Tasks(), nested.Tasks())
}

func TestSubTask(t *testing.T) {
	ctx := context.Background()
	reporter := &recordingReporter{}
	root := Root(entity.NewWorkspaceFolder("/w", "w"), "tasks", WithReporter(reporter))

	got, err := SubTask(ctx, root, "cargo metadata", func(ctx context.Context, c *Context) (int, error) {
		return SubTask(ctx, c, "rustup show", func(_ context.Context, c *Context) (int, error) {
			assert.Equal(t, "tasks / cargo metadata / rustup show", c.Label())
			return 7, nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, []string{
		"begin w: tasks / cargo metadata",
		"begin w: tasks / cargo metadata / rustup show",
		"end tasks / cargo metadata / rustup show",
		"end tasks / cargo metadata",
	}, reporter.events)

	t.Run("error ends the report", func(t *testing.T) {
		reporter.events = nil
		sample := errors.New("sample")
		_, err := SubTask(ctx, root, "broken", func(context.Context, *Context) (string, error) {
			return "", sample
		})
		assert.ErrorIs(t, err, sample)
		assert.Equal(t, []string{"begin w: tasks / broken", "end tasks / broken"}, reporter.events)
	})

	t.Run("default reporter", func(t *testing.T) {
		_, err := SubTask(ctx, Root(entity.NewWorkspaceFolder("/w", ""), "x"), "y", func(context.Context, *Context) (bool, error) {
			return true, nil
		})
		assert.NoError(t, err)
	})
}

func TestTimed(t *testing.T) {
	scope := tally.NewTestScope("testing", make(map[string]string, 0))
	root := Root(entity.NewWorkspaceFolder("/w", "w"), "tasks", WithStats(scope))

	got, err := Timed(context.Background(), root.Child("sub"), "cargo_metadata", func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	timers := scope.Snapshot().Timers()
	require.Len(t, timers, 1)
	for _, timer := range timers {
		assert.Equal(t, "testing.cargo_metadata", timer.Name())
		assert.Len(t, timer.Values(), 1)
	}
}
