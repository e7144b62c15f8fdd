package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs/fsmock"
	"go.etcd.io/bbolt"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		last, err := s.LastCheck(ctx)
		require.NoError(t, err)
		assert.True(t, last.IsZero())

		_, ok, err := s.InstalledRelease(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	checked := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	release := entity.Release{ID: 148923, Tag: "nightly"}

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.SetLastCheck(ctx, checked))
		require.NoError(t, s.SetInstalledRelease(ctx, release))

		last, err := s.LastCheck(ctx)
		require.NoError(t, err)
		assert.True(t, checked.Equal(last))

		r, ok, err := s.InstalledRelease(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, release, r)
	})

	require.NoError(t, s.Close())

	t.Run("survives reopening", func(t *testing.T) {
		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()

		last, err := s.LastCheck(ctx)
		require.NoError(t, err)
		assert.True(t, checked.Equal(last))

		r, ok, err := s.InstalledRelease(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, release, r)
	})
}

func TestMalformedValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	db := s.(*repository).db
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(_bucket))
		if err := b.Put([]byte(KeyLastCheck), []byte("yesterday")); err != nil {
			return err
		}
		return b.Put([]byte(KeyInstalledRelease), []byte("{"))
	}))

	_, err = s.LastCheck(ctx)
	assert.Error(t, err)
	_, _, err = s.InstalledRelease(ctx)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("configured path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "state.db")
		var repo Repository
		app := fxtest.New(t,
			fx.Provide(func() (config.Provider, error) {
				return config.NewStaticProvider(map[string]interface{}{
					_configKey: map[string]interface{}{"path": path},
				})
			}),
			fx.Supply(zap.NewNop().Sugar()),
			fx.Provide(fs.New),
			fx.Provide(New),
			fx.Populate(&repo),
		)
		app.RequireStart()
		require.NoError(t, repo.SetLastCheck(context.Background(), time.UnixMilli(1000)))
		app.RequireStop()

		s, err := Open(path)
		require.NoError(t, err)
		defer s.Close()
		last, err := s.LastCheck(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1000), last.UnixMilli())
	})

	t.Run("defaults to user cache dir", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cacheDir := t.TempDir()
		fsMock := fsmock.NewMockRlsdFS(ctrl)
		fsMock.EXPECT().UserCacheDir().Return(cacheDir, nil)
		fsMock.EXPECT().MkdirAll(filepath.Join(cacheDir, "rlsd")).DoAndReturn(fs.New().MkdirAll)

		cfg, err := config.NewStaticProvider(map[string]interface{}{})
		require.NoError(t, err)
		lc := fxtest.NewLifecycle(t)
		repo, err := New(Params{
			Lifecycle: lc,
			Config:    cfg,
			FS:        fsMock,
			Logger:    zap.NewNop().Sugar(),
		})
		require.NoError(t, err)
		assert.NotNil(t, repo)
		lc.RequireStart()
		lc.RequireStop()
		assert.FileExists(t, filepath.Join(cacheDir, "rlsd", "state.db"))
	})
}
