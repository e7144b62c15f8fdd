package clientworkspace

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/gateway/ide-client/ideclientmock"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor/executormock"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const _stateTimeout = 5 * time.Second

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeServer is a language server on the other end of in-memory pipes.
type fakeServer struct {
	process *executor.Process
	conn    jsonrpc2.Conn
	stderr  io.WriteCloser

	// beforeInitialize runs before the initialize request is answered.
	beforeInitialize func(ctx context.Context, conn jsonrpc2.Conn)
	initializeErr    error

	mu      sync.Mutex
	methods []string
}

type pipes struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p pipes) Close() error {
	for _, c := range p.closers {
		c.Close()
	}
	return nil
}

func newFakeServer(t *testing.T) *fakeServer {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	f := &fakeServer{
		process: executor.NewProcess("rls", stdinW, stdoutR, stderrR),
		stderr:  stderrW,
	}
	f.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(pipes{
		Reader:  stdinR,
		Writer:  stdoutW,
		closers: []io.Closer{stdinR, stdoutW, stderrW},
	}))
	f.conn.Go(context.Background(), f.handle)

	t.Cleanup(func() {
		f.process.Kill()
		f.conn.Close()
		<-f.conn.Done()
	})
	return f
}

func (f *fakeServer) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	f.mu.Lock()
	f.methods = append(f.methods, req.Method())
	f.mu.Unlock()

	switch req.Method() {
	case protocol.MethodInitialize:
		if f.beforeInitialize != nil {
			f.beforeInitialize(ctx, f.conn)
		}
		if f.initializeErr != nil {
			return reply(ctx, nil, f.initializeErr)
		}
		return reply(ctx, &protocol.InitializeResult{ServerInfo: &protocol.ServerInfo{Name: "fake"}}, nil)
	case protocol.MethodExit:
		f.process.Kill()
		return nil
	}
	return reply(ctx, nil, nil)
}

func (f *fakeServer) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

func (f *fakeServer) notify(t *testing.T, method string, params interface{}) {
	require.NoError(t, f.conn.Notify(context.Background(), method, params))
}

// stubBackend launches a fixed command.
type stubBackend struct {
	engine entity.Engine
	err    error
	resets int
}

func (b *stubBackend) Engine() entity.Engine { return b.engine }

func (b *stubBackend) Launch(ctx context.Context, tc *taskctx.Context) (LaunchDescriptor, error) {
	if b.err != nil {
		return LaunchDescriptor{}, b.err
	}
	return LaunchDescriptor{Command: "rls", Cwd: tc.Folder().Path}, nil
}

func (b *stubBackend) Reset() { b.resets++ }

type testDeps struct {
	backend  *stubBackend
	executor *executormock.MockExecutor
	gateway  *ideclientmock.MockGateway
	stats    tally.TestScope
}

func newTestWorkspace(t *testing.T, cfg entity.RustConfig) (*clientWorkspace, testDeps) {
	ctrl := gomock.NewController(t)
	deps := testDeps{
		backend:  &stubBackend{engine: entity.EngineRLS},
		executor: executormock.NewMockExecutor(ctrl),
		gateway:  ideclientmock.NewMockGateway(ctrl),
		stats:    tally.NewTestScope("testing", nil),
	}
	w := &clientWorkspace{
		folder:    entity.NewWorkspaceFolder("/w/project", ""),
		cfg:       cfg,
		backend:   deps.backend,
		executor:  deps.executor,
		gateway:   deps.gateway,
		logger:    zap.NewNop().Sugar(),
		stats:     deps.stats,
		notifyCtx: context.Background(),
		cell:      NewStateCell(),
	}
	t.Cleanup(func() {
		assert.NoError(t, w.Dispose(context.Background()))
	})
	return w, deps
}

func (d testDeps) expectSpawn(servers ...*fakeServer) {
	for _, s := range servers {
		d.executor.EXPECT().Spawn(gomock.Any(), "rls", nil, executor.Options{Cwd: "/w/project", KeepStdin: true}).
			Return(s.process, nil)
	}
}

// observe records every state change of w.
func observe(w ClientWorkspace) <-chan entity.SessionState {
	ch := make(chan entity.SessionState, 64)
	w.Observe(func(s entity.SessionState) { ch <- s })
	return ch
}

func expectStates(t *testing.T, ch <-chan entity.SessionState, want ...entity.SessionState) {
	t.Helper()
	for _, w := range want {
		select {
		case got := <-ch:
			require.Equal(t, w, got)
		case <-time.After(_stateTimeout):
			require.FailNow(t, "timed out waiting for state", "want %s", w)
		}
	}
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())
	assert.True(t, w.Running())
	assert.Equal(t, entity.ReadyState(), w.State())

	t.Run("start is idempotent while running", func(t *testing.T) {
		require.NoError(t, w.Start(ctx))
		assert.Empty(t, states)
	})

	require.NoError(t, w.Stop(ctx))
	expectStates(t, states, entity.StandbyState())
	assert.False(t, w.Running())
	assert.Equal(t, []string{protocol.MethodInitialize, protocol.MethodInitialized, protocol.MethodShutdown, protocol.MethodExit}, server.received())

	t.Run("stop is safe when not started", func(t *testing.T) {
		require.NoError(t, w.Stop(ctx))
		assert.Empty(t, states)
	})

	assert.Equal(t, int64(1), deps.stats.Snapshot().Counters()["testing.start+"].Value())
	assert.Equal(t, int64(1), deps.stats.Snapshot().Counters()["testing.stop+"].Value())
}

func TestWindowProgress(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())

	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "x", Percentage: floatPtr(0.4)})
	expectStates(t, states, entity.ProgressState("40%"))

	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "x", Done: true})
	expectStates(t, states, entity.ReadyState())

	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "y", Title: "Building"})
	expectStates(t, states, entity.ProgressState("[building]"))
	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "y", Message: "serde"})
	expectStates(t, states, entity.ProgressState("serde"))
	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "y", Done: true})
	expectStates(t, states, entity.ReadyState())
}

func TestProgressDuringInitialize(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	server.beforeInitialize = func(ctx context.Context, conn jsonrpc2.Conn) {
		conn.Notify(ctx, MethodWindowProgress, &model.WindowProgress{ID: "x", Title: "Indexing"})
	}
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ProgressState("[indexing]"))

	server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "x", Done: true})
	expectStates(t, states, entity.ReadyState())
}

func TestWorkDoneProgress(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())

	token := protocol.NewProgressToken("rustAnalyzer/Indexing")
	server.notify(t, protocol.MethodProgress, &protocol.ProgressParams{
		Token: *token,
		Value: &protocol.WorkDoneProgressBegin{Kind: protocol.WorkDoneProgressKindBegin, Title: "Indexing"},
	})
	expectStates(t, states, entity.ProgressState("[indexing]"))

	server.notify(t, protocol.MethodProgress, &protocol.ProgressParams{
		Token: *token,
		Value: &protocol.WorkDoneProgressReport{Kind: protocol.WorkDoneProgressKindReport, Percentage: 50},
	})
	expectStates(t, states, entity.ProgressState("50%"))

	server.notify(t, protocol.MethodProgress, &protocol.ProgressParams{
		Token: *token,
		Value: &protocol.WorkDoneProgressEnd{Kind: protocol.WorkDoneProgressKindEnd},
	})
	expectStates(t, states, entity.ReadyState())
}

func TestDiagnosticsProgress(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())

	server.notify(t, MethodDiagnosticsBegin, nil)
	expectStates(t, states, entity.ProgressState("[diagnostics]"))
	server.notify(t, MethodDiagnosticsEnd, nil)
	expectStates(t, states, entity.ReadyState())
}

func TestServerMessages(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)

	require.NoError(t, w.Start(ctx))

	shown := make(chan *protocol.ShowMessageParams, 1)
	deps.gateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, params *protocol.ShowMessageParams) error {
		shown <- params
		return nil
	})
	server.notify(t, protocol.MethodWindowShowMessage, &protocol.ShowMessageParams{Type: protocol.MessageTypeWarning, Message: "no Cargo.toml"})
	select {
	case params := <-shown:
		assert.Equal(t, "no Cargo.toml", params.Message)
	case <-time.After(_stateTimeout):
		require.FailNow(t, "message was not forwarded")
	}

	logged := make(chan *protocol.LogMessageParams, 1)
	deps.gateway.EXPECT().LogMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, params *protocol.LogMessageParams) error {
		logged <- params
		return nil
	})
	server.notify(t, protocol.MethodWindowLogMessage, &protocol.LogMessageParams{Type: protocol.MessageTypeLog, Message: "indexing std"})
	select {
	case params := <-logged:
		assert.Equal(t, "indexing std", params.Message)
		assert.Equal(t, protocol.MessageTypeLog, params.Type)
	case <-time.After(_stateTimeout):
		require.FailNow(t, "log message was not forwarded")
	}

	t.Run("requests of the server are answered", func(t *testing.T) {
		var result interface{}
		_, err := server.conn.Call(ctx, protocol.MethodWorkDoneProgressCreate, &protocol.WorkDoneProgressCreateParams{Token: *protocol.NewProgressToken("t")}, &result)
		assert.NoError(t, err)

		_, err = server.conn.Call(ctx, protocol.MethodWorkspaceConfiguration, &protocol.ConfigurationParams{}, &result)
		assert.ErrorContains(t, err, "method not found")
	})
}

func TestCrash(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	first, second := newFakeServer(t), newFakeServer(t)
	deps.expectSpawn(first, second)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())

	first.process.Kill()
	expectStates(t, states, entity.StandbyState())
	assert.False(t, w.Running())

	require.NoError(t, w.Start(ctx), "the workspace can be started again")
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())
	assert.True(t, w.Running())
	assert.Equal(t, int64(1), deps.stats.Snapshot().Counters()["testing.exit+"].Value())
}

func TestRestart(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	first, second := newFakeServer(t), newFakeServer(t)
	deps.expectSpawn(first, second)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())

	require.NoError(t, w.Restart(ctx))
	expectStates(t, states, entity.StandbyState(), entity.ProgressState("Starting"), entity.ReadyState())
	assert.Contains(t, first.received(), protocol.MethodExit)
	assert.Equal(t, []string{protocol.MethodInitialize, protocol.MethodInitialized}, second.received())
}

func TestConcurrentRestart(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	servers := []*fakeServer{newFakeServer(t), newFakeServer(t), newFakeServer(t), newFakeServer(t)}
	deps.expectSpawn(servers...)

	require.NoError(t, w.Start(ctx))
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Restart(ctx))
		}()
	}
	wg.Wait()

	alive := 0
	for _, s := range servers {
		if s.process.Alive() {
			alive++
		}
	}
	assert.Equal(t, 1, alive, "one live session per folder")
}

func TestStartFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("spawn failure is shown", func(t *testing.T) {
		w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
		states := observe(w)
		deps.executor.EXPECT().Spawn(gomock.Any(), "rls", gomock.Any(), gomock.Any()).Return(nil, errors.New("no such file"))
		deps.gateway.EXPECT().ShowMessage(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, params *protocol.ShowMessageParams) error {
			assert.Equal(t, protocol.MessageTypeError, params.Type)
			assert.Contains(t, params.Message, "no such file")
			return nil
		})

		err := w.Start(ctx)
		assert.ErrorContains(t, err, "no such file")
		expectStates(t, states, entity.ProgressState("Starting"), entity.StandbyState())
		assert.Equal(t, int64(1), deps.stats.Snapshot().Counters()["testing.start_failure+"].Value())
	})

	t.Run("hidden when messages are never revealed", func(t *testing.T) {
		cfg := entity.DefaultRustConfig()
		cfg.RevealOutputChannelOn = entity.RevealOnNever
		w, deps := newTestWorkspace(t, cfg)
		deps.executor.EXPECT().Spawn(gomock.Any(), "rls", gomock.Any(), gomock.Any()).Return(nil, errors.New("no such file"))

		assert.Error(t, w.Start(ctx))
		assert.Equal(t, entity.StandbyState(), w.State())
	})

	t.Run("launch failure", func(t *testing.T) {
		w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
		deps.backend.err = errors.New("toolchain missing")
		deps.gateway.EXPECT().ShowMessage(ctx, gomock.Any()).Return(nil)

		assert.ErrorContains(t, w.Start(ctx), "toolchain missing")
		assert.Equal(t, entity.StandbyState(), w.State())
	})

	t.Run("initialize failure kills the server", func(t *testing.T) {
		w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
		server := newFakeServer(t)
		server.initializeErr = errors.New("bad workspace")
		deps.expectSpawn(server)
		deps.gateway.EXPECT().ShowMessage(ctx, gomock.Any()).Return(nil)

		assert.ErrorContains(t, w.Start(ctx), "bad workspace")
		assert.Equal(t, entity.StandbyState(), w.State())
		assert.False(t, server.process.Alive())
		assert.False(t, w.Running())
	})
}

func (f *fakeServer) count(method string) int {
	n := 0
	for _, m := range f.received() {
		if m == method {
			n++
		}
	}
	return n
}

func TestSharedSession(t *testing.T) {
	ctx := context.Background()
	shared := NewSingleton(func(s *session) { s.close(context.Background()) })
	first, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	second, _ := newTestWorkspace(t, entity.DefaultRustConfig())
	second.folder = entity.NewWorkspaceFolder("/w/other", "")
	for _, w := range []*clientWorkspace{first, second} {
		w.shared = shared
		w.sharedKey = "rust-analyzer:@latest"
	}
	server := newFakeServer(t)
	// Only the first folder spawns a server.
	deps.expectSpawn(server)
	firstStates, secondStates := observe(first), observe(second)

	require.NoError(t, first.Start(ctx))
	expectStates(t, firstStates, entity.ProgressState("Starting"), entity.ReadyState())
	require.NoError(t, second.Start(ctx))
	expectStates(t, secondStates, entity.ProgressState("Starting"), entity.ReadyState())
	assert.Same(t, first.session, second.session)
	assert.Eventually(t, func() bool {
		return server.count(protocol.MethodWorkspaceDidChangeWorkspaceFolders) == 1
	}, _stateTimeout, 10*time.Millisecond)

	t.Run("progress reaches every folder", func(t *testing.T) {
		server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "x", Title: "Indexing"})
		expectStates(t, firstStates, entity.ProgressState("[indexing]"))
		expectStates(t, secondStates, entity.ProgressState("[indexing]"))
		server.notify(t, MethodWindowProgress, &model.WindowProgress{ID: "x", Done: true})
		expectStates(t, firstStates, entity.ReadyState())
		expectStates(t, secondStates, entity.ReadyState())
	})

	t.Run("stopping one folder keeps the session", func(t *testing.T) {
		require.NoError(t, first.Stop(ctx))
		assert.False(t, first.Running())
		assert.True(t, second.Running())
		assert.Eventually(t, func() bool {
			return server.count(protocol.MethodWorkspaceDidChangeWorkspaceFolders) == 2
		}, _stateTimeout, 10*time.Millisecond)
	})

	t.Run("rejoining reuses the session", func(t *testing.T) {
		require.NoError(t, first.Start(ctx))
		assert.Same(t, second.session, first.session)
	})

	t.Run("last folder closes the session", func(t *testing.T) {
		require.NoError(t, first.Stop(ctx))
		require.NoError(t, second.Stop(ctx))
		assert.False(t, server.process.Alive())
		assert.False(t, shared.Release(func(*session) bool { return true }), "session was released")
	})
}

func TestDisposeRemovesObservers(t *testing.T) {
	ctx := context.Background()
	w, deps := newTestWorkspace(t, entity.DefaultRustConfig())
	server := newFakeServer(t)
	deps.expectSpawn(server)
	states := observe(w)

	require.NoError(t, w.Start(ctx))
	expectStates(t, states, entity.ProgressState("Starting"), entity.ReadyState())
	require.NoError(t, w.Dispose(ctx))
	expectStates(t, states, entity.StandbyState())

	w.cell.Set(entity.ReadyState())
	assert.Empty(t, states)
}

func floatPtr(f float64) *float64 {
	return &f
}
