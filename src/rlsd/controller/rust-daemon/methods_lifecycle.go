package rustdaemon

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/multierr"
)

// Initialize stores the folders of a new connection and advertises the daemon's commands.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	result := &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{
			Name: "Rust Language Supervisor",
		},
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
			},
			Workspace: &protocol.ServerCapabilitiesWorkspace{
				WorkspaceFolders: &protocol.ServerCapabilitiesWorkspaceFolders{
					Supported:           true,
					ChangeNotifications: true,
				},
			},
		},
	}
	if err := mapper.InitializeResultAppendExecuteCommandProvider(result, &protocol.ExecuteCommandOptions{Commands: Commands}); err != nil {
		return nil, err
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}

	s.InitializeParams = params
	s.RootURI = params.RootURI
	s.WorkspaceFolders = mapper.InitializeParamsToWorkspaceFolders(params)
	if params.ClientInfo != nil {
		s.ClientName = entity.ClientName(params.ClientInfo.Name)
	}
	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}
	for _, folder := range s.WorkspaceFolders {
		c.watcher.Add(folder.Path)
	}
	c.logger.Infow("session initialized", "session", s.UUID.String(), "folders", len(s.WorkspaceFolders), "client", s.ClientName)

	if c.cfg.UpdateOnStartup && c.cfg.Engine == entity.EngineRustAnalyzer {
		c.async(ctx, func(ctx context.Context) {
			if _, err := c.update(ctx); err != nil {
				c.logger.Warnw("updating on startup", "error", err)
			}
		})
	}
	return result, nil
}

// Initialized handles any actions that need to occur immediately after initialization.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	if len(s.WorkspaceFolders) == 0 {
		c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Message: "Open a folder to use the Rust language server.",
			Type:    protocol.MessageTypeWarning,
		})
	}
	return nil
}

// Shutdown is sent just before Exit to indicate that the session will exit.
func (c *controller) Shutdown(ctx context.Context) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}
	c.logger.Infow("session shutting down", "session", s.UUID.String())
	return nil
}

// Exit will be used to either clean up from an individual connection, or shutdown the whole server.
func (c *controller) Exit(ctx context.Context) error {
	if c.fullShutdown {
		// Zero out the timer to trigger immediate shutdown.
		c.idleTimerMu.Lock()
		c.idleTimer.Reset(0)
		c.idleTimerMu.Unlock()
		return nil
	}
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error during session exit: %w", err)
	}

	return c.EndSession(ctx, s.UUID)
}

// RequestFullShutdown will set the controller to treat subsequent Shutdown and Exit requests as requests to exit the entire process.
func (c *controller) RequestFullShutdown(ctx context.Context) error {
	c.fullShutdown = true

	return nil
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	defer c.refreshIdleTimer(ctx)

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	session := mapper.UUIDToSession(id, conn)
	if err := c.ideGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}

	if err := c.sessions.Set(ctx, session); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// EndSession closes the workspaces no other session uses, during or after the last JSON-RPC request.
func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	defer c.refreshIdleTimer(ctx)

	var errs error
	if s, err := c.sessions.Get(ctx, id); err == nil {
		for _, folder := range s.WorkspaceFolders {
			errs = multierr.Append(errs, c.releaseFolder(ctx, id, folder))
		}
	}

	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Error(err)
	}
	if errs != nil {
		c.logger.Warnw("closing workspaces of session", "session", id.String(), "error", errs)
	}
	return c.sessions.Delete(ctx, id)
}
