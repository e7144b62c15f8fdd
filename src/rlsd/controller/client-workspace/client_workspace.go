// Package clientworkspace supervises one language server session per workspace folder.
package clientworkspace

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	ideclient "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

const _messageStarting = "Starting"

// ClientWorkspace supervises the language server session of one root folder.
// At most one session is live at a time; Start, Stop and Restart never run concurrently.
type ClientWorkspace interface {
	Folder() entity.WorkspaceFolder
	Engine() entity.Engine
	// State returns the current session state.
	State() entity.SessionState
	// Observe registers fn for every state change and returns the function removing it.
	Observe(fn func(entity.SessionState)) (dispose func())
	// Running reports whether a session process is alive.
	Running() bool

	// Start launches the session unless one is running. On failure the workspace stays in standby
	// and can be started again.
	Start(ctx context.Context) error
	// Stop shuts the session down. It is a no-op when nothing runs.
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	// Dispose stops the session and removes every observer.
	Dispose(ctx context.Context) error
}

type clientWorkspace struct {
	folder   entity.WorkspaceFolder
	cfg      entity.RustConfig
	backend  Backend
	executor executor.Executor
	gateway  ideclient.Gateway
	stderr   io.Writer
	logger   *zap.SugaredLogger
	stats    tally.Scope

	// notifyCtx routes messages of the server to the editor session that created the workspace.
	notifyCtx context.Context
	cell      *StateCell

	// shared, when set, holds the one session every workspace of the process joins.
	shared    *Singleton[*session]
	sharedKey string

	// mu serializes the lifecycle.
	mu      sync.Mutex
	session *session
}

func (w *clientWorkspace) Folder() entity.WorkspaceFolder {
	return w.folder
}

func (w *clientWorkspace) Engine() entity.Engine {
	return w.backend.Engine()
}

func (w *clientWorkspace) State() entity.SessionState {
	return w.cell.Get()
}

func (w *clientWorkspace) Observe(fn func(entity.SessionState)) func() {
	return w.cell.Observe(fn)
}

func (w *clientWorkspace) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session != nil && w.session.process.Alive()
}

func (w *clientWorkspace) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startLocked(ctx)
}

func (w *clientWorkspace) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopLocked(ctx)
}

func (w *clientWorkspace) Restart(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.stopLocked(ctx); err != nil {
		w.logger.Warnw("stopping session before restart", "error", err)
	}
	return w.startLocked(ctx)
}

func (w *clientWorkspace) Dispose(ctx context.Context) error {
	err := w.Stop(ctx)
	w.cell.Clear()
	return err
}

func (w *clientWorkspace) startLocked(ctx context.Context) (err error) {
	if w.session != nil {
		if w.session.process.Alive() {
			return nil
		}
		// The previous session exited on its own.
		w.releaseLocked(ctx)
	}

	w.stats.Counter("start").Inc(1)
	w.cell.Set(entity.ProgressState(_messageStarting))
	defer func() {
		if err != nil {
			w.stats.Counter("start_failure").Inc(1)
			w.cell.Set(entity.StandbyState())
			w.reportFailure(ctx, err)
		}
	}()

	if w.shared == nil {
		s, err := w.launch(ctx)
		if err != nil {
			return err
		}
		w.session = s
		return nil
	}

	w.shared.Release(func(s *session) bool { return !s.process.Alive() })
	s, err := w.shared.Get(ctx, w.sharedKey, w.launch)
	if err != nil {
		return err
	}
	if err := s.join(ctx, w); err != nil {
		return fmt.Errorf("adding %s to %s: %w", w.folder.Name, w.backend.Engine(), err)
	}
	w.session = s
	return nil
}

// launch starts and initializes a language server for the folder of w.
func (w *clientWorkspace) launch(ctx context.Context) (*session, error) {
	tc := taskctx.Root(w.folder, string(w.backend.Engine()),
		taskctx.WithReporter(w.gateway),
		taskctx.WithStats(w.stats),
	)
	desc, err := w.backend.Launch(ctx, tc)
	if err != nil {
		return nil, err
	}

	process, err := w.executor.Spawn(ctx, desc.Command, desc.Args, executor.Options{
		Cwd:       desc.Cwd,
		Env:       desc.Env,
		KeepStdin: true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", w.backend.Engine(), err)
	}
	w.logger.Infow("language server started", "command", process.String(), "pid", process.Pid())

	s := w.connect(process)
	if err := s.initialize(ctx, w.folder, desc.InitializationOptions); err != nil {
		s.close(ctx)
		return nil, fmt.Errorf("initializing %s: %w", w.backend.Engine(), err)
	}
	return s, nil
}

func (w *clientWorkspace) stopLocked(ctx context.Context) error {
	if w.session == nil {
		w.cell.Set(entity.StandbyState())
		return nil
	}

	err := w.releaseLocked(ctx)
	w.cell.Set(entity.StandbyState())
	w.stats.Counter("stop").Inc(1)
	w.logger.Infow("language server stopped")
	return err
}

// releaseLocked detaches w from its session. The session is closed unless other folders still use it.
func (w *clientWorkspace) releaseLocked(ctx context.Context) error {
	s := w.session
	w.session = nil
	if w.shared != nil {
		if s.leave(ctx, w) > 0 {
			return nil
		}
		w.shared.Release(func(v *session) bool { return v == s })
	}
	return s.close(ctx)
}

// reportFailure logs err and shows it to the user unless error messages are hidden by configuration.
func (w *clientWorkspace) reportFailure(ctx context.Context, err error) {
	w.logger.Errorw("unable to start language server", "error", err)
	if !w.cfg.RevealOutputChannelOn.Reveals(entity.RevealOnError) {
		return
	}
	if showErr := w.gateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: fmt.Sprintf("Could not start %s for %s: %v", w.backend.Engine(), w.folder.Name, err),
	}); showErr != nil {
		w.logger.Warnw("showing start failure", "error", showErr)
	}
}

// onExit runs once the session process is gone. Exits requested by Stop are expected.
func (w *clientWorkspace) onExit(s *session, err error) {
	if s.isStopping() {
		return
	}
	w.stats.Counter("exit").Inc(1)
	w.logger.Warnw("language server exited", "error", err)
	w.cell.Set(entity.StandbyState())
}
