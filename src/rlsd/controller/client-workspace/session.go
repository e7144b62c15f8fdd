package clientworkspace

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifications sent by the language servers besides the standard ones.
const (
	MethodWindowProgress      = "window/progress"
	MethodDiagnosticsBegin    = "rustDocument/diagnosticsBegin"
	MethodDiagnosticsEnd      = "rustDocument/diagnosticsEnd"
	_diagnosticsProgressToken = "rustDocument/diagnostics"
	_diagnosticsProgressTitle = "Diagnostics"
)

const (
	_shutdownTimeout = 5 * time.Second
	_exitTimeout     = 2 * time.Second
)

// session is one running language server process and the connection to it.
// w launched the session. A shared session also serves the folders of its other members.
type session struct {
	w       *clientWorkspace
	process *executor.Process
	conn    jsonrpc2.Conn
	server  protocol.Server
	cancel  context.CancelFunc
	exited  chan struct{}

	mu          sync.Mutex
	members     map[*clientWorkspace]struct{}
	progress    *progressTracker
	initialized bool
	stopping    bool
}

// stdio joins the pipes of the process into the stream read by the connection.
type stdio struct {
	process *executor.Process
}

func (s stdio) Read(p []byte) (int, error)  { return s.process.Stdout.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.process.Stdin.Write(p) }
func (s stdio) Close() error {
	return multierr.Append(s.process.Stdin.Close(), s.process.Stdout.Close())
}

// connect starts reading the server's messages. The returned session is not initialized yet.
func (w *clientWorkspace) connect(process *executor.Process) *session {
	ctx, cancel := context.WithCancel(context.Background())
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(stdio{process: process}))
	s := &session{
		w:        w,
		process:  process,
		conn:     conn,
		server:   protocol.ServerDispatcher(conn, w.logger.Desugar()),
		cancel:   cancel,
		exited:   make(chan struct{}),
		members:  map[*clientWorkspace]struct{}{w: {}},
		progress: newProgressTracker(),
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		w.drainStderr(process.Stderr)
	}()

	conn.Go(ctx, s.handle)

	go func() {
		defer close(s.exited)
		select {
		case <-process.Done():
		case <-conn.Done():
		}
		conn.Close()
		if err := process.Kill(); err != nil {
			w.logger.Warnw("killing language server", "error", err)
		}
		<-conn.Done()
		<-drained
		err := process.Wait()
		for _, m := range s.attached() {
			m.onExit(s, err)
		}
	}()
	return s
}

func (s *session) initialize(ctx context.Context, folder entity.WorkspaceFolder, options interface{}) error {
	params := &protocol.InitializeParams{
		ProcessID:             int32(os.Getpid()),
		ClientInfo:            &protocol.ClientInfo{Name: "rlsd"},
		RootURI:               protocol.DocumentURI(uri.File(folder.Path)),
		RootPath:              folder.Path,
		InitializationOptions: options,
		Capabilities: protocol.ClientCapabilities{
			Workspace: &protocol.WorkspaceClientCapabilities{WorkspaceFolders: true},
			Window:    &protocol.WindowClientCapabilities{WorkDoneProgress: true},
		},
		WorkspaceFolders: []protocol.WorkspaceFolder{workspaceFolder(folder)},
	}
	if _, err := s.server.Initialize(ctx, params); err != nil {
		return err
	}
	if err := s.server.Initialized(ctx, &protocol.InitializedParams{}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.publishLocked(s.progress.state())
	return nil
}

// join adds the folder of w to a running session.
func (s *session) join(ctx context.Context, w *clientWorkspace) error {
	s.mu.Lock()
	_, ok := s.members[w]
	s.mu.Unlock()
	if ok {
		return nil
	}

	if err := s.server.DidChangeWorkspaceFolders(ctx, &protocol.DidChangeWorkspaceFoldersParams{
		Event: protocol.WorkspaceFoldersChangeEvent{Added: []protocol.WorkspaceFolder{workspaceFolder(w.folder)}},
	}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[w] = struct{}{}
	if s.initialized && !s.stopping {
		w.cell.Set(s.progress.state())
	}
	return nil
}

// leave removes the folder of w and returns how many folders the session still serves.
func (s *session) leave(ctx context.Context, w *clientWorkspace) int {
	s.mu.Lock()
	delete(s.members, w)
	remaining := len(s.members)
	s.mu.Unlock()

	if remaining > 0 && s.process.Alive() {
		if err := s.server.DidChangeWorkspaceFolders(ctx, &protocol.DidChangeWorkspaceFoldersParams{
			Event: protocol.WorkspaceFoldersChangeEvent{Removed: []protocol.WorkspaceFolder{workspaceFolder(w.folder)}},
		}); err != nil {
			s.w.logger.Debugw("removing folder from language server", "folder", w.folder.Path, "error", err)
		}
	}
	return remaining
}

func (s *session) attached() []*clientWorkspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*clientWorkspace, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

func (s *session) publishLocked(state entity.SessionState) {
	for m := range s.members {
		m.cell.Set(state)
	}
}

func workspaceFolder(folder entity.WorkspaceFolder) protocol.WorkspaceFolder {
	return protocol.WorkspaceFolder{URI: string(uri.File(folder.Path)), Name: folder.Name}
}

// close asks the server to exit, then kills it if it is still alive.
func (s *session) close(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	if s.process.Alive() {
		shutdownCtx, cancel := context.WithTimeout(ctx, _shutdownTimeout)
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.w.logger.Debugw("language server did not shut down", "error", err)
		} else if err := s.server.Exit(shutdownCtx); err != nil {
			s.w.logger.Debugw("language server did not exit", "error", err)
		}
		cancel()

		select {
		case <-s.process.Done():
		case <-time.After(_exitTimeout):
		}
	}

	err := s.process.Kill()
	s.conn.Close()
	<-s.exited
	s.cancel()
	return err
}

func (s *session) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// update applies fn to the outstanding progress and publishes the resulting state once initialized.
func (s *session) update(fn func(*progressTracker)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.progress)
	if s.initialized && !s.stopping {
		s.publishLocked(s.progress.state())
	}
}

// handle serves the requests and notifications sent by the language server.
func (s *session) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case MethodWindowProgress:
		p, err := mapper.RequestToWindowProgress(req)
		if err != nil {
			return reply(ctx, nil, err)
		}
		s.update(func(t *progressTracker) {
			if p.Done {
				t.end(p.ID)
				return
			}
			if p.Title != "" {
				t.begin(p.ID, p.Title)
			}
			t.report(p.ID, p.Message, p.Percentage)
		})

	case protocol.MethodProgress:
		params, err := mapper.RequestToProgressParams(req)
		if err != nil {
			return reply(ctx, nil, err)
		}
		value, err := mapper.ProgressParamsToWorkDoneProgress(params)
		if err != nil {
			return reply(ctx, nil, err)
		}
		id := params.Token.String()
		var percentage *float64
		if value.Percentage != nil {
			p := float64(*value.Percentage) / 100
			percentage = &p
		}
		s.update(func(t *progressTracker) {
			switch value.Kind {
			case protocol.WorkDoneProgressKindBegin:
				t.begin(id, value.Title)
				t.report(id, value.Message, percentage)
			case protocol.WorkDoneProgressKindReport:
				t.report(id, value.Message, percentage)
			case protocol.WorkDoneProgressKindEnd:
				t.end(id)
			}
		})

	case MethodDiagnosticsBegin:
		s.update(func(t *progressTracker) { t.begin(_diagnosticsProgressToken, _diagnosticsProgressTitle) })

	case MethodDiagnosticsEnd:
		s.update(func(t *progressTracker) { t.end(_diagnosticsProgressToken) })

	case protocol.MethodWindowShowMessage:
		var params protocol.ShowMessageParams
		if err := decode(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		if err := s.w.gateway.ShowMessage(s.w.notifyCtx, &params); err != nil {
			s.w.logger.Debugw("forwarding server message", "error", err)
		}

	case protocol.MethodWindowLogMessage:
		var params protocol.LogMessageParams
		if err := decode(req, &params); err != nil {
			return reply(ctx, nil, err)
		}
		if err := s.w.gateway.LogMessage(s.w.notifyCtx, &params); err != nil {
			s.w.logger.Debugw("forwarding server log", "error", err)
		}

	case protocol.MethodWorkDoneProgressCreate, protocol.MethodClientRegisterCapability, protocol.MethodClientUnregisterCapability:
		return reply(ctx, nil, nil)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
	return reply(ctx, nil, nil)
}

func decode(req jsonrpc2.Request, v interface{}) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
	}
	return nil
}

// drainStderr forwards the server's stderr to the session log file, or to the debug log.
func (w *clientWorkspace) drainStderr(stderr io.Reader) {
	if w.stderr != nil {
		if _, err := io.Copy(w.stderr, stderr); err != nil {
			w.logger.Debugw("copying server stderr", "error", err)
		}
		return
	}
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		w.logger.Debugw("server stderr", zap.String("line", scanner.Text()))
	}
}
