package clientworkspace

import (
	"context"
	"sync"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/controller/release"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	ideclient "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/internal/logfilewriter"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "client-workspace"

// Factory creates the ClientWorkspace of a root folder.
type Factory interface {
	// Create returns a workspace in standby for folder. Messages of its server are shown in the
	// editor session of ctx.
	Create(ctx context.Context, folder entity.WorkspaceFolder) (ClientWorkspace, error)
	// Reset drops what the backend resolved ahead of launches, e.g. after the server binary was updated.
	Reset()
}

// Params are inbound parameters to initialize the workspace factory.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Toolchain      toolchain.Toolchain
	Channels       *toolchain.ChannelFactory
	Release        release.Resolver
	Executor       executor.Executor
	IdeGateway     ideclient.Gateway
	FS             fs.RlsdFS
	ServerInfoFile serverinfofile.ServerInfoFile
	Logger         *zap.SugaredLogger
	Stats          tally.Scope
}

type factory struct {
	cfg      entity.RustConfig
	backend  Backend
	executor executor.Executor
	gateway  ideclient.Gateway
	logger   *zap.SugaredLogger
	stats    tally.Scope

	// sessions is set for engines that allow only one live session per process.
	sessions *Singleton[*session]

	outputWriterParams logfilewriter.Params
	outputMu           sync.Mutex
	output             *logfilewriter.Writer
}

// New creates the workspace factory. The backend is chosen once from the configured engine.
func New(p Params) (Factory, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}
	logger := p.Logger.With("plugin", _nameKey)
	backend, err := NewBackend(cfg, p.Toolchain, p.Channels, p.Release, logger)
	if err != nil {
		return nil, err
	}
	f := &factory{
		cfg:      cfg,
		backend:  backend,
		executor: p.Executor,
		gateway:  p.IdeGateway,
		logger:   logger,
		stats:    p.Stats.SubScope("client_workspace"),
		outputWriterParams: logfilewriter.Params{
			FS:             p.FS,
			Lifecycle:      p.Lifecycle,
			ServerInfoFile: p.ServerInfoFile,
		},
	}
	if backend.Engine() == entity.EngineRustAnalyzer {
		f.sessions = NewSingleton(func(s *session) {
			if err := s.close(context.Background()); err != nil {
				logger.Warnw("closing shared language server", "error", err)
			}
		})
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				f.sessions.Teardown()
				return nil
			},
		})
	}
	return f, nil
}

func (f *factory) Create(ctx context.Context, folder entity.WorkspaceFolder) (ClientWorkspace, error) {
	w := &clientWorkspace{
		folder:    folder,
		cfg:       f.cfg,
		backend:   f.backend,
		executor:  f.executor,
		gateway:   f.gateway,
		logger:    f.logger.With("folder", folder.Path),
		stats:     f.stats.Tagged(map[string]string{"engine": string(f.backend.Engine())}),
		notifyCtx: context.WithoutCancel(ctx),
		cell:      NewStateCell(),
		shared:    f.sessions,
		sharedKey: f.sessionKey(),
	}
	if f.cfg.LogToFile {
		if output := f.outputWriter(); output != nil {
			w.stderr = output.Prefixed(folder.Name)
		}
	}
	return w, nil
}

// sessionKey identifies the configuration a shared session was started with.
func (f *factory) sessionKey() string {
	return string(f.backend.Engine()) + ":" + f.cfg.ServerPath + "@" + f.cfg.Release.Tag
}

func (f *factory) Reset() {
	f.backend.Reset()
	if f.sessions != nil {
		// Running workspaces keep the old session until they restart onto a new one.
		f.sessions.Release(func(*session) bool { return true })
	}
}

// outputWriter opens the shared session log on first use. Failing to open it only costs the file.
func (f *factory) outputWriter() *logfilewriter.Writer {
	f.outputMu.Lock()
	defer f.outputMu.Unlock()
	if f.output != nil {
		return f.output
	}
	output, err := logfilewriter.Open(f.outputWriterParams, string(f.backend.Engine()))
	if err != nil {
		f.logger.Warnw("unable to open the server log file", "error", err)
		return nil
	}
	f.output = output
	return output
}
