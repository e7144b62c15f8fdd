// Package rustdaemon implements the rust-daemon business logic.
package rustdaemon

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/controller/cargo"
	clientworkspace "github.com/uber/rust-lsp/src/rlsd/controller/client-workspace"
	"github.com/uber/rust-lsp/src/rlsd/controller/release"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	ideclient "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/factorygraph"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/repository/session"
	"github.com/uber/rust-lsp/src/rlsd/repository/workspace"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey = "rust-daemon"

	// Configuration keys
	_idleTimeoutMinutesKey = "idleTimeoutMinutes"

	_manifestFile = "Cargo.toml"
	_lockFile     = "Cargo.lock"
)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	// Document related methods.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error

	// Workspace related methods.
	DidChangeWorkspaceFolders(ctx context.Context, params *protocol.DidChangeWorkspaceFoldersParams) error
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error)

	// Custom methods for use within this service.
	RequestFullShutdown(ctx context.Context) error
	InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Invalidator reports a change of the value a factory holds for a folder.
type Invalidator interface {
	Invalidate(folder entity.WorkspaceFolder)
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Shutdowner fx.Shutdowner
	Lifecycle  fx.Lifecycle
	Sessions   session.Repository
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Config     config.Provider
	FS         fs.RlsdFS
	Stats      tally.Scope

	Toolchain  toolchain.Toolchain
	Release    release.Resolver
	Workspaces clientworkspace.Factory
	Channels   *toolchain.ChannelFactory
	Metadata   *cargo.WorkspaceFactory
	Tasks      *cargo.TaskFactory
}

type controller struct {
	cfg        entity.RustConfig
	sessions   session.Repository
	shutdowner fx.Shutdowner
	ideGateway ideclient.Gateway
	fs         fs.RlsdFS
	logger     *zap.SugaredLogger
	stats      tally.Scope

	toolchain  toolchain.Toolchain
	release    release.Resolver
	factory    clientworkspace.Factory
	workspaces workspace.Repository[clientworkspace.ClientWorkspace]

	// graph owns the per-folder factories below.
	graph     *factorygraph.Graph
	channels  Invalidator
	manifests Invalidator
	tasks     factorygraph.Factory[[]entity.Task]
	watcher   *watcher

	fullShutdown       bool
	idleTimer          *time.Timer
	idleTimerMu        sync.Mutex
	idleTimeoutMinutes time.Duration
	done               chan struct{}

	// wg tracks work started by notifications, which return before it completes.
	wg sync.WaitGroup
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	ctx := context.Background()

	var timeoutMinutesRaw int64
	if err := p.Config.Get(_idleTimeoutMinutesKey).Populate(&timeoutMinutesRaw); err != nil {
		return nil, fmt.Errorf("unable to get idle timeout from config: %w", err)
	}
	if timeoutMinutesRaw <= 0 {
		return nil, fmt.Errorf("%q must be a positive number of minutes, got %d", _idleTimeoutMinutesKey, timeoutMinutesRaw)
	}
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}

	stats := p.Stats.SubScope("rust_daemon")
	c := &controller{
		cfg:        cfg,
		sessions:   p.Sessions,
		shutdowner: p.Shutdowner,
		ideGateway: p.IdeGateway,
		fs:         p.FS,
		logger:     p.Logger.With("plugin", _nameKey),
		stats:      stats,
		toolchain:  p.Toolchain,
		release:    p.Release,
		factory:    p.Workspaces,
		workspaces: workspace.New[clientworkspace.ClientWorkspace](stats),
		graph:      factorygraph.NewGraph(),
		channels:   p.Channels,
		manifests:  p.Metadata,
		tasks:      p.Tasks,

		idleTimeoutMinutes: time.Duration(timeoutMinutesRaw) * time.Minute,
		done:               make(chan struct{}),
	}
	c.graph.Add(p.Channels, p.Metadata, p.Tasks)

	if c.watcher, err = newWatcher(c.logger, c.onFileChanged); err != nil {
		return nil, fmt.Errorf("watching manifests: %w", err)
	}
	c.refreshIdleTimer(ctx)

	p.Lifecycle.Append(fx.Hook{
		OnStop: c.onStop,
	})
	return c, nil
}

// onStop stops every language server, then releases the factories and the watcher.
func (c *controller) onStop(ctx context.Context) error {
	c.idleTimerMu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimerMu.Unlock()

	c.wg.Wait()

	var err error
	for _, folder := range c.workspaces.Folders(ctx) {
		err = multierr.Append(err, c.closeWorkspace(ctx, folder))
	}
	err = multierr.Append(err, c.graph.Dispose())
	return multierr.Append(err, c.watcher.Close())
}

// refreshIdleTimer ensures that the service shuts down after a defined inactivity period with no connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	// First call initializes new timer and leaves it running prior to first connection.
	if c.idleTimer == nil {
		c.idleTimer = time.NewTimer(c.idleTimeoutMinutes)
		go func() {
			select {
			case <-c.idleTimer.C:
			case <-c.done:
				return
			}
			c.logger.Info("Shutdown signal received.")
			if err := c.shutdowner.Shutdown(); err != nil {
				os.Exit(1)
			}
		}()
		return nil
	}

	// Subsequent calls stop the timer and reset it only if no connections are active.
	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.idleTimer.Stop()
	if currentSessions == 0 {
		c.idleTimer.Reset(c.idleTimeoutMinutes)
	}
	return nil
}

// async runs fn on a context that outlives the notification that triggered it.
func (c *controller) async(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(ctx)
	}()
}
