package toolchain

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/factorygraph"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Toolchain files, in lookup order.
const (
	ToolchainFileTOML   = "rust-toolchain.toml"
	ToolchainFileLegacy = "rust-toolchain"
)

// ChannelFactory resolves the toolchain channel of a workspace folder.
// The configured channel wins, then a toolchain file in the folder, then the channel rustup selects.
type ChannelFactory struct {
	*factorygraph.Caching[string]

	cfg       entity.RustConfig
	toolchain Toolchain
	fs        fs.RlsdFS
	logger    *zap.SugaredLogger
}

// ChannelParams are inbound parameters to initialize a ChannelFactory.
type ChannelParams struct {
	fx.In

	Config    config.Provider
	Toolchain Toolchain
	FS        fs.RlsdFS
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
}

type toolchainFile struct {
	Toolchain struct {
		Channel string `toml:"channel"`
	} `toml:"toolchain"`
}

// NewChannelFactory creates the channel factory.
func NewChannelFactory(p ChannelParams) (*ChannelFactory, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}
	f := &ChannelFactory{
		cfg:       cfg,
		toolchain: p.Toolchain,
		fs:        p.FS,
		logger:    p.Logger.With("plugin", "channel"),
	}
	f.Caching = factorygraph.NewCaching(f.compute, factorygraph.WithStats(p.Stats.SubScope("channel_factory")))
	return f, nil
}

func (f *ChannelFactory) compute(ctx context.Context, tc *taskctx.Context) (string, error) {
	if f.cfg.Channel != "" {
		return f.cfg.Channel, nil
	}
	if channel, ok := f.fromToolchainFile(tc.Folder()); ok {
		return channel, nil
	}
	if f.cfg.DisableRustup {
		return "", nil
	}
	return taskctx.SubTask(ctx, tc, "rustup show", func(ctx context.Context, tc *taskctx.Context) (string, error) {
		return f.toolchain.ActiveChannel(ctx, tc.Folder().Path)
	})
}

// fromToolchainFile reads the channel pinned by the folder. Any problem is logged and ignored.
func (f *ChannelFactory) fromToolchainFile(folder entity.WorkspaceFolder) (string, bool) {
	for _, name := range []string{ToolchainFileTOML, ToolchainFileLegacy} {
		path := filepath.Join(folder.Path, name)
		exists, err := f.fs.FileExists(path)
		if err != nil {
			f.logger.Warnw("checking toolchain file", "path", path, "error", err)
			continue
		}
		if !exists {
			continue
		}

		b, err := f.fs.ReadFile(path)
		if err != nil {
			f.logger.Warnw("reading toolchain file", "path", path, "error", err)
			continue
		}
		if channel, ok := parseToolchainFile(name, string(b)); ok {
			f.logger.Infow("using channel from toolchain file", "path", path, "channel", channel)
			return channel, true
		}
		f.logger.Warnw("toolchain file does not name a channel", "path", path)
	}
	return "", false
}

// parseToolchainFile accepts the TOML format, and for the legacy file name a bare channel name.
func parseToolchainFile(name string, content string) (string, bool) {
	var tf toolchainFile
	if _, err := toml.Decode(content, &tf); err == nil && tf.Toolchain.Channel != "" {
		return tf.Toolchain.Channel, true
	}
	if name != ToolchainFileLegacy {
		return "", false
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.ContainsAny(trimmed, "\n=[") {
		return "", false
	}
	return trimmed, true
}
