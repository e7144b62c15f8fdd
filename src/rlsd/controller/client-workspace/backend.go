package clientworkspace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/uber/rust-lsp/src/rlsd/controller/release"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"go.uber.org/zap"
)

const (
	_envRustSrcPath     = "RUST_SRC_PATH"
	_envRustLog         = "RUST_LOG"
	_envRustupToolchain = "RUSTUP_TOOLCHAIN"

	_taskComponents = "install components"
	_taskServer     = "resolve server"
	_taskSysroot    = "sysroot"
)

// LaunchDescriptor describes how to start a language server process for a folder.
type LaunchDescriptor struct {
	Command               string
	Args                  []string
	Env                   []string
	Cwd                   string
	InitializationOptions interface{}
}

// Backend prepares the launch of one language server implementation.
type Backend interface {
	Engine() entity.Engine
	// Launch resolves the toolchain and the server binary of the folder in tc.
	Launch(ctx context.Context, tc *taskctx.Context) (LaunchDescriptor, error)
	// Reset drops anything resolved ahead of the next launch.
	Reset()
}

// NewBackend returns the backend selected by cfg.Engine.
func NewBackend(cfg entity.RustConfig, tc toolchain.Toolchain, channels *toolchain.ChannelFactory, resolver release.Resolver, logger *zap.SugaredLogger) (Backend, error) {
	base := backendBase{cfg: cfg, toolchain: tc, channels: channels, logger: logger}
	switch cfg.Engine {
	case entity.EngineRLS:
		return &rlsBackend{backendBase: base}, nil
	case entity.EngineRustAnalyzer:
		return &rustAnalyzerBackend{backendBase: base, release: resolver, binary: NewSingleton[string](nil)}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

type backendBase struct {
	cfg       entity.RustConfig
	toolchain toolchain.Toolchain
	channels  *toolchain.ChannelFactory
	logger    *zap.SugaredLogger
}

// env builds the environment shared by both servers. The sysroot lookup is best effort.
func (b *backendBase) env(ctx context.Context, tc *taskctx.Context, channel string, logFilter string) []string {
	var env []string
	sysroot, err := taskctx.SubTask(ctx, tc, _taskSysroot, func(ctx context.Context, _ *taskctx.Context) (string, error) {
		return b.toolchain.Sysroot(ctx, channel)
	})
	if err != nil {
		b.logger.Warnw("unable to locate the rust sources", "folder", tc.Folder().Path, "channel", channel, "error", err)
	} else {
		env = append(env, _envRustSrcPath+"="+filepath.Join(sysroot, "lib", "rustlib", "src", "rust", "src"))
	}
	if b.cfg.LogToFile {
		env = append(env, _envRustLog+"="+logFilter)
	}
	return env
}

type rlsBackend struct {
	backendBase
}

func (b *rlsBackend) Engine() entity.Engine {
	return entity.EngineRLS
}

// Launch runs the configured rls binary, or `rustup run <channel> rls` after making sure the
// toolchain ships every configured component.
func (b *rlsBackend) Launch(ctx context.Context, tc *taskctx.Context) (LaunchDescriptor, error) {
	channel, err := b.channels.Get(ctx, tc)
	if err != nil {
		return LaunchDescriptor{}, fmt.Errorf("resolving toolchain channel: %w", err)
	}

	var name string
	var args []string
	if b.cfg.RLSPath != "" {
		name, args = b.toolchain.Command("", b.cfg.RLSPath)
	} else {
		if !b.cfg.DisableRustup {
			if _, err := taskctx.SubTask(ctx, tc, _taskComponents, func(ctx context.Context, _ *taskctx.Context) (struct{}, error) {
				return struct{}{}, b.toolchain.EnsureComponents(ctx, channel, b.cfg.Components)
			}); err != nil {
				return LaunchDescriptor{}, err
			}
		}
		name, args = b.toolchain.Command(channel, string(entity.EngineRLS))
	}

	return LaunchDescriptor{
		Command: name,
		Args:    args,
		Env:     b.env(ctx, tc, channel, "rls=debug"),
		Cwd:     tc.Folder().Path,
	}, nil
}

func (b *rlsBackend) Reset() {}

type rustAnalyzerBackend struct {
	backendBase

	release release.Resolver
	// binary is shared by every workspace of the process.
	binary *Singleton[string]
}

func (b *rustAnalyzerBackend) Engine() entity.Engine {
	return entity.EngineRustAnalyzer
}

// Launch runs the configured server path or the binary installed by the release resolver.
func (b *rustAnalyzerBackend) Launch(ctx context.Context, tc *taskctx.Context) (LaunchDescriptor, error) {
	path, err := taskctx.SubTask(ctx, tc, _taskServer, func(ctx context.Context, _ *taskctx.Context) (string, error) {
		return b.binary.Get(ctx, b.cfg.ServerPath+"@"+b.cfg.Release.Tag, func(ctx context.Context) (string, error) {
			if b.cfg.ServerPath != "" {
				return b.cfg.ServerPath, nil
			}
			return b.release.Resolve(ctx)
		})
	})
	if err != nil {
		return LaunchDescriptor{}, fmt.Errorf("resolving %s: %w", entity.EngineRustAnalyzer, err)
	}

	channel, err := b.channels.Get(ctx, tc)
	if err != nil {
		return LaunchDescriptor{}, fmt.Errorf("resolving toolchain channel: %w", err)
	}

	name, args := b.toolchain.Command("", path)
	env := b.env(ctx, tc, channel, "rust_analyzer=info")
	if channel != "" && !b.cfg.DisableRustup {
		env = append(env, _envRustupToolchain+"="+channel)
	}
	return LaunchDescriptor{
		Command: name,
		Args:    args,
		Env:     env,
		Cwd:     tc.Folder().Path,
	}, nil
}

// Reset makes the next launch resolve the binary again, picking up a freshly installed release.
func (b *rustAnalyzerBackend) Reset() {
	b.binary.Teardown()
}
