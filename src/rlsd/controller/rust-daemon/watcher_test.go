package rustdaemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher(t *testing.T) {
	t.Run("reports debounced changes", func(t *testing.T) {
		dir := t.TempDir()
		changes := make(chan string, 10)
		w, err := newWatcher(zap.NewNop().Sugar(), func(path string) {
			changes <- path
		})
		require.NoError(t, err)
		defer w.Close()

		w.Add(dir)
		manifest := filepath.Join(dir, "Cargo.toml")
		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(manifest, []byte("[package]\n"), 0o644))
		}

		select {
		case path := <-changes:
			assert.Equal(t, manifest, path)
		case <-time.After(5 * time.Second):
			t.Fatal("change was not reported")
		}

		// Writes in quick succession collapse into one notification.
		select {
		case path := <-changes:
			t.Fatalf("unexpected second notification for %s", path)
		case <-time.After(3 * _debounceTimeout):
		}
	})

	t.Run("reference counted folders", func(t *testing.T) {
		dir := t.TempDir()
		w, err := newWatcher(zap.NewNop().Sugar(), func(string) {})
		require.NoError(t, err)
		defer w.Close()

		w.Add(dir)
		w.Add(dir + string(filepath.Separator))
		assert.Equal(t, 2, w.dirs[dir])

		w.Remove(dir)
		assert.Equal(t, 1, w.dirs[dir])
		w.Remove(dir)
		w.Remove(dir)
		assert.NotContains(t, w.dirs, dir)
	})

	t.Run("missing folder", func(t *testing.T) {
		w, err := newWatcher(zap.NewNop().Sugar(), func(string) {})
		require.NoError(t, err)
		defer w.Close()

		w.Add(filepath.Join(t.TempDir(), "missing"))
	})

	t.Run("close cancels pending changes", func(t *testing.T) {
		dir := t.TempDir()
		w, err := newWatcher(zap.NewNop().Sugar(), func(path string) {
			t.Errorf("unexpected change of %s", path)
		})
		require.NoError(t, err)

		w.Add(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), nil, 0o644))
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		time.Sleep(2 * _debounceTimeout)
	})
}
