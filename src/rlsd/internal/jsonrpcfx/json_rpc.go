package jsonrpcfx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKeyAddress = "jsonrpc.address"
	_outputKey        = "lsp-address"
)

// Module is an fx module to handle JSON-RPC requests.
var Module = fx.Provide(New)

// JSONRPCModule represents a module to manage JSON-RPC requests.
type JSONRPCModule interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	ServeStream(ctx context.Context, conn jsonrpc2.Conn) error
	RegisterConnectionManager(connectionManager ConnectionManager) error
}

// Router serves as the interface through which handling of requests will be implemented.
type Router interface {
	HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error
	UUID() uuid.UUID
}

// ConnectionManager will manage each active connection and its corresponding Router throughout the lifecycle of a connection.
type ConnectionManager interface {
	NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router Router, err error)
	RemoveConnection(ctx context.Context, id uuid.UUID)
}

type module struct {
	Address string `json:"address"`

	connectionMgr  ConnectionManager
	logger         *zap.SugaredLogger
	serverInfoFile serverinfofile.ServerInfoFile
	stats          tally.Scope

	mu      sync.Mutex
	ln      net.Listener
	closing bool
	served  chan struct{}
	conns   map[jsonrpc2.Conn]struct{}
	active  sync.WaitGroup
}

// Params define values to be used by JsonRpcHandler.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Logger         *zap.SugaredLogger
	ServerInfoFile serverinfofile.ServerInfoFile
	Stats          tally.Scope `optional:"true"`
}

// New creates a new server to handle JSON-RPC requests on the given port and host.
func New(p Params) (JSONRPCModule, error) {
	if p.Lifecycle == nil || p.Config == nil {
		return nil, errors.New("required parameters are missing")
	}

	stats := p.Stats
	if stats == nil {
		stats = tally.NoopScope
	}
	m := module{
		logger:         p.Logger,
		serverInfoFile: p.ServerInfoFile,
		stats:          stats.SubScope("jsonrpc"),
		conns:          make(map[jsonrpc2.Conn]struct{}),
	}

	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: m.OnStart,
		OnStop:  m.OnStop,
	})

	return &m, nil
}

// OnStart binds the listener, publishes its address and begins handling incoming connections.
func (m *module) OnStart(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return err
	}

	// An address with port 0 binds a random port, so the bound address is the one to publish.
	address := m.ln.Addr().String()
	if err := m.serverInfoFile.UpdateField(_outputKey, address); err != nil {
		m.mu.Lock()
		m.ln.Close()
		m.ln = nil
		m.mu.Unlock()
		return fmt.Errorf("publishing JSON-RPC address: %w", err)
	}

	// Logged at warn so that it is kept at reduced log levels. Clients may depend on this message.
	m.logger.Warnw("started JSON-RPC inbound", zap.String("address", address))

	m.served = make(chan struct{})
	go m.serve()
	return nil
}

// OnStop closes the listener and every open connection, then waits for their cleanup.
func (m *module) OnStop(ctx context.Context) error {
	m.mu.Lock()
	if m.ln == nil || m.closing {
		m.mu.Unlock()
		return nil
	}
	m.closing = true
	err := m.ln.Close()
	for conn := range m.conns {
		if cerr := conn.Close(); cerr != nil {
			m.logger.Debugw("closing connection", zap.Error(cerr))
		}
	}
	m.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		<-m.served
		m.active.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// ServeStream is called when a new connection is initiated. Requests received via the connection will be routed to the handler, and answered via the connection's replier.
func (m *module) ServeStream(ctx context.Context, conn jsonrpc2.Conn) error {
	if m.connectionMgr == nil {
		m.logger.Errorf("cannot serve connection, no connection manager set")
		return errors.New("cannot serve connection, no connection manager set")
	}

	// Start handling the connection.
	handler, err := m.connectionMgr.NewConnection(ctx, &conn)
	if err != nil {
		return err
	}
	m.logger.Infow("client connected", zap.Stringer("uuid", handler.UUID()))
	m.stats.Counter("connections").Inc(1)
	conn.Go(ctx, handler.HandleReq)

	// Block indefinitely until connection closed.
	<-conn.Done()

	// Cleanup after connection.
	m.connectionMgr.RemoveConnection(ctx, handler.UUID())
	m.logger.Infow("client disconnected", zap.Stringer("uuid", handler.UUID()))

	return conn.Err()
}

// RegisterConnectionManager sets the connection manager, which keeps track of current active connections and provides a Router implementation.
func (m *module) RegisterConnectionManager(connectionMgr ConnectionManager) error {
	if m.connectionMgr != nil {
		return errors.New("cannot register a duplicate connection manager")
	}
	m.connectionMgr = connectionMgr
	return nil
}

// setup should be called after creation of a new handler to set initial values.
func (m *module) setup() error {
	if m.Address == "" {
		return errors.New("setup called before address is set")
	}

	addr, err := net.ResolveTCPAddr("tcp", m.Address)
	if err != nil {
		return err
	}

	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.ln = ln
	m.mu.Unlock()
	return nil
}

// serve accepts connections until the listener is closed.
func (m *module) serve() {
	defer close(m.served)

	ctx := context.Background()
	for {
		netConn, err := m.ln.Accept()
		if err != nil {
			if !m.isClosing() {
				m.logger.Errorw("JSON-RPC inbound stopped", zap.Error(err))
			}
			return
		}

		stream := jsonrpc2.NewStream(netConn)
		conn := jsonrpc2.NewConn(stream)
		if !m.track(conn) {
			stream.Close()
			return
		}
		go func() {
			defer m.active.Done()
			defer m.untrack(conn)

			if err := m.ServeStream(ctx, conn); err != nil && !m.isClosing() {
				m.logger.Debugw("connection closed", zap.Error(err))
			}
			stream.Close()
		}()
	}
}

func (m *module) isClosing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closing
}

// track registers conn unless the module is stopping.
func (m *module) track(conn jsonrpc2.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return false
	}
	m.conns[conn] = struct{}{}
	m.active.Add(1)
	return true
}

func (m *module) untrack(conn jsonrpc2.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

// processConfig will parse the configuration for any values required by this module.
func (m *module) processConfig(cfg config.Provider) error {
	val := cfg.Get(_configKeyAddress)
	if err := val.Populate(&m.Address); err != nil {
		// incorrectly formatted config
		return fmt.Errorf("getting config field %q: %w", _configKeyAddress, err)
	}

	if m.Address == "" {
		// yaml is missing either the key or value
		return fmt.Errorf("missing field %q in config", _configKeyAddress)
	}

	return nil
}
