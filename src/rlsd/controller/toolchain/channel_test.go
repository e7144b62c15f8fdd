package toolchain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain/toolchainmock"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs/fsmock"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"go.uber.org/config"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newTestChannelFactory(t *testing.T, rust map[string]interface{}) (*ChannelFactory, *toolchainmock.MockToolchain, *fsmock.MockRlsdFS) {
	ctrl := gomock.NewController(t)
	tc := toolchainmock.NewMockToolchain(ctrl)
	fsMock := fsmock.NewMockRlsdFS(ctrl)

	values := map[string]interface{}{}
	if rust != nil {
		values["rust"] = rust
	}
	provider, err := config.NewStaticProvider(values)
	require.NoError(t, err)

	f, err := NewChannelFactory(ChannelParams{
		Config:    provider,
		Toolchain: tc,
		FS:        fsMock,
		Logger:    zap.NewNop().Sugar(),
		Stats:     tally.NoopScope,
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, f.Dispose()) })
	return f, tc, fsMock
}

func TestChannelFactory(t *testing.T) {
	ctx := context.Background()
	folder := entity.NewWorkspaceFolder(filepath.Join("/home", "user", "project"), "project")
	tomlPath := filepath.Join(folder.Path, ToolchainFileTOML)
	legacyPath := filepath.Join(folder.Path, ToolchainFileLegacy)

	t.Run("configured channel", func(t *testing.T) {
		f, _, _ := newTestChannelFactory(t, map[string]interface{}{"channel": "nightly"})
		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "nightly", channel)
	})

	t.Run("toml toolchain file", func(t *testing.T) {
		f, _, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(tomlPath).Return(true, nil)
		fsMock.EXPECT().ReadFile(tomlPath).Return([]byte("[toolchain]\nchannel = \"nightly-2024-01-01\"\ncomponents = [\"rustfmt\"]\n"), nil)

		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "nightly-2024-01-01", channel)
	})

	t.Run("legacy toolchain file", func(t *testing.T) {
		f, _, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(tomlPath).Return(false, nil)
		fsMock.EXPECT().FileExists(legacyPath).Return(true, nil)
		fsMock.EXPECT().ReadFile(legacyPath).Return([]byte("1.75.0\n"), nil)

		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "1.75.0", channel)
	})

	t.Run("unreadable toolchain file falls back to rustup", func(t *testing.T) {
		f, tc, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(tomlPath).Return(true, nil)
		fsMock.EXPECT().ReadFile(tomlPath).Return(nil, errors.New("permission denied"))
		fsMock.EXPECT().FileExists(legacyPath).Return(false, errors.New("permission denied"))
		tc.EXPECT().ActiveChannel(gomock.Any(), folder.Path).Return("stable-x86_64-unknown-linux-gnu", nil)

		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "stable-x86_64-unknown-linux-gnu", channel)
	})

	t.Run("rustup disabled", func(t *testing.T) {
		f, _, fsMock := newTestChannelFactory(t, map[string]interface{}{"disableRustup": true})
		fsMock.EXPECT().FileExists(gomock.Any()).Return(false, nil).Times(2)

		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Empty(t, channel)
	})

	t.Run("rustup failure is not cached", func(t *testing.T) {
		f, tc, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(gomock.Any()).Return(false, nil).Times(4)
		gomock.InOrder(
			tc.EXPECT().ActiveChannel(gomock.Any(), folder.Path).Return("", &errors.ProcessError{ExitCode: 1}),
			tc.EXPECT().ActiveChannel(gomock.Any(), folder.Path).Return("stable", nil),
		)

		_, err := f.Get(ctx, taskctx.Root(folder, "test"))
		assert.Error(t, err)
		assert.False(t, f.Cached(folder))

		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "stable", channel)
	})

	t.Run("cached until invalidated", func(t *testing.T) {
		f, tc, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(gomock.Any()).Return(false, nil).Times(4)
		tc.EXPECT().ActiveChannel(gomock.Any(), folder.Path).Return("stable", nil).Times(2)

		for i := 0; i < 3; i++ {
			channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
			require.NoError(t, err)
			assert.Equal(t, "stable", channel)
		}

		f.Invalidate(folder)
		assert.False(t, f.Cached(folder))
		channel, err := f.Get(ctx, taskctx.Root(folder, "test"))
		require.NoError(t, err)
		assert.Equal(t, "stable", channel)
	})

	t.Run("rustup show is reported as a sub task", func(t *testing.T) {
		f, tc, fsMock := newTestChannelFactory(t, nil)
		fsMock.EXPECT().FileExists(gomock.Any()).Return(false, nil).Times(2)
		tc.EXPECT().ActiveChannel(gomock.Any(), folder.Path).Return("stable", nil)

		reporter := &recordingReporter{}
		_, err := f.Get(ctx, taskctx.Root(folder, "channel", taskctx.WithReporter(reporter)))
		require.NoError(t, err)
		assert.Equal(t, []string{"channel / rustup show"}, reporter.labels)
	})
}

type recordingReporter struct {
	labels []string
}

func (r *recordingReporter) Begin(_ context.Context, _ entity.WorkspaceFolder, label string) func() {
	r.labels = append(r.labels, label)
	return func() {}
}

func TestParseToolchainFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
		wantOK  bool
	}{
		{
			name:    "toml",
			file:    ToolchainFileTOML,
			content: "[toolchain]\nchannel = \"stable\"\n",
			want:    "stable",
			wantOK:  true,
		},
		{
			name:    "toml in legacy file",
			file:    ToolchainFileLegacy,
			content: "[toolchain]\nchannel = \"beta\"\n",
			want:    "beta",
			wantOK:  true,
		},
		{
			name:    "bare channel in legacy file",
			file:    ToolchainFileLegacy,
			content: "  nightly-2024-01-01  \n",
			want:    "nightly-2024-01-01",
			wantOK:  true,
		},
		{
			name:    "bare channel in toml file",
			file:    ToolchainFileTOML,
			content: "nightly\n",
		},
		{
			name:    "toml without channel",
			file:    ToolchainFileTOML,
			content: "[toolchain]\ncomponents = [\"clippy\"]\n",
		},
		{
			name:    "empty legacy file",
			file:    ToolchainFileLegacy,
			content: "\n",
		},
		{
			name:    "multi line legacy file",
			file:    ToolchainFileLegacy,
			content: "nightly\nstable\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseToolchainFile(tt.file, tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
