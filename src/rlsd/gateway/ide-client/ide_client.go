package notifier

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// MethodRustStatus is the notification carrying the state of a folder's language server session.
const MethodRustStatus = "rust/status"

const (
	_errSendToClient = "sending call/notification to IDE: %w"

	_timeoutUserSelectionMoreInfo = time.Second * 5
	_timeoutUserSelectionEnd      = time.Minute * 2

	_titleUserInputProgress          = "User Input Needed"
	_messageUserInputProgressInitial = "Please make a selection from the prompt."
	_messageUserInputProgressUpdate  = "Waiting for a selection. Click here to expand notifications if you don't see a prompt."

	_actionCancel = "Cancel"
)

// Prompter asks the user to confirm an action before it is taken.
type Prompter interface {
	// Confirm shows message with a single action button and reports whether the user chose it.
	Confirm(ctx context.Context, message string, action string) (bool, error)
}

// LogWriter writes to the IDE's output log.
type LogWriter interface {
	// GetLogMessageWriter returns an io.Writer that can be used to log messages to the IDE client.
	// Do not store or use across requests, get a new one each time as needed.
	GetLogMessageWriter(ctx context.Context, prefix string) (io.Writer, error)
}

// Gateway is used to send outbound notifications and calls to the IDE.
// All calls to the gateway should include a context with a session UUID, which will be used to route outbound calls and notifications to the correct IDE session.
type Gateway interface {
	Prompter
	LogWriter

	// RegisterClient registers a new client with the gateway. Should be called each time a new IDE connection is initialized.
	RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterClient removes a client from the gateway. Should be called each time an IDE connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error)
	ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error)
	ShowMessageRequest(ctx context.Context, params *protocol.ShowMessageRequestParams) (result *protocol.MessageActionItem, err error)

	// Status sends a rust/status notification for a single workspace folder.
	Status(ctx context.Context, status *model.Status) error

	// Begin reports a task as work done progress and returns the function ending it.
	// Reporting is best effort: failures are logged and never surface to the task.
	Begin(ctx context.Context, folder entity.WorkspaceFolder, label string) (end func())
}

type gateway struct {
	clients     map[uuid.UUID]protocol.Client
	connections map[uuid.UUID]jsonrpc2.Conn
	clientsMu   sync.Mutex
	logger      *zap.Logger
}

// New returns a Gateway for sending IDE notifications and calls.
func New(logger *zap.Logger) Gateway {
	return &gateway{
		clients:     make(map[uuid.UUID]protocol.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      logger.Named("ide-client"),
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	client := protocol.ClientDispatcher(*conn, g.logger)
	g.clients[id] = client
	g.connections[id] = *conn

	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	delete(g.clients, id)
	delete(g.connections, id)

	return nil
}

func (g *gateway) LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error) {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.LogMessage(ctx, params)
}

func (g *gateway) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error) {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return c.ShowMessage(ctx, params)
}

func (g *gateway) ShowMessageRequest(ctx context.Context, params *protocol.ShowMessageRequestParams) (result *protocol.MessageActionItem, err error) {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToClient, err)
	}

	if params.Type > protocol.MessageTypeError {
		// Messages levels Warn and below get hidden if the user has their notifications silenced.
		// Guide them to check their notifications.
		showMessageDone, err := g.showWaitingForUserSelection(ctx)
		if err != nil {
			return nil, fmt.Errorf(_errSendToClient, err)
		}
		defer showMessageDone()
	}

	return c.ShowMessageRequest(ctx, params)
}

func (g *gateway) Confirm(ctx context.Context, message string, action string) (bool, error) {
	result, err := g.ShowMessageRequest(ctx, &protocol.ShowMessageRequestParams{
		Type:    protocol.MessageTypeInfo,
		Message: message,
		Actions: []protocol.MessageActionItem{{Title: action}, {Title: _actionCancel}},
	})
	if err != nil {
		return false, err
	}
	return result != nil && result.Title == action, nil
}

func (g *gateway) Status(ctx context.Context, status *model.Status) error {
	_, conn, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	if err := conn.Notify(ctx, MethodRustStatus, status); err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}
	return nil
}

func (g *gateway) Begin(ctx context.Context, folder entity.WorkspaceFolder, label string) (end func()) {
	nop := func() {}
	c, _, err := g.getClient(ctx)
	if err != nil {
		g.logger.Debug("not reporting progress", zap.String("task", label), zap.Error(err))
		return nop
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		g.logger.Warn("creating progress token", zap.Error(err))
		return nop
	}
	token := protocol.NewProgressToken(tokenID.String())
	if err := c.WorkDoneProgressCreate(ctx, &protocol.WorkDoneProgressCreateParams{Token: *token}); err != nil {
		g.logger.Warn("creating task progress", zap.String("task", label), zap.Error(err))
		return nop
	}
	if err := c.Progress(ctx, &protocol.ProgressParams{
		Token: *token,
		Value: &protocol.WorkDoneProgressBegin{
			Kind:    protocol.WorkDoneProgressKindBegin,
			Title:   label,
			Message: folder.Name,
		},
	}); err != nil {
		g.logger.Warn("starting task progress", zap.String("task", label), zap.Error(err))
		return nop
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The task may have ended because ctx was cancelled, the progress still needs to close.
			if err := c.Progress(context.WithoutCancel(ctx), &protocol.ProgressParams{
				Token: *token,
				Value: &protocol.WorkDoneProgressEnd{Kind: protocol.WorkDoneProgressKindEnd},
			}); err != nil {
				g.logger.Warn("ending task progress", zap.String("task", label), zap.Error(err))
			}
		})
	}
}

func (g *gateway) getClient(ctx context.Context) (protocol.Client, jsonrpc2.Conn, error) {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, ok := g.clients[id]
	if !ok {
		return nil, nil, fmt.Errorf("client with id %q not found", id)
	}

	conn, ok := g.connections[id]
	if !ok {
		return nil, nil, fmt.Errorf("client with id %q not found", id)
	}
	return client, conn, nil
}

// showWaitingForUserSelection sends a notification to the IDE client that a user selection is required.
// This is added in case the IDE client has notifications hidden, to make the user aware that their action is needed.
func (g *gateway) showWaitingForUserSelection(ctx context.Context) (doneFunc func(), err error) {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToClient, err)
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf(_errSendToClient, err)
	}

	token := protocol.NewProgressToken(tokenID.String())
	if err := c.WorkDoneProgressCreate(ctx, &protocol.WorkDoneProgressCreateParams{Token: *token}); err != nil {
		return nil, fmt.Errorf("creating user input progress: %w", err)
	}
	if err := c.Progress(ctx, &protocol.ProgressParams{
		Token: *token,
		Value: &protocol.WorkDoneProgressBegin{
			Kind:        protocol.WorkDoneProgressKindBegin,
			Title:       _titleUserInputProgress,
			Message:     _messageUserInputProgressInitial,
			Cancellable: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("starting user input progress: %w", err)
	}

	updateProgressTimer := time.AfterFunc(_timeoutUserSelectionMoreInfo, func() {
		c.Progress(ctx, &protocol.ProgressParams{
			Token: *token,
			Value: &protocol.WorkDoneProgressReport{
				Kind:    protocol.WorkDoneProgressKindReport,
				Message: _messageUserInputProgressUpdate,
			},
		})
	})

	// The user may ignore the prompt entirely.
	endProgressFunc := func() {
		c.Progress(ctx, &protocol.ProgressParams{
			Token: *token,
			Value: &protocol.WorkDoneProgressEnd{Kind: protocol.WorkDoneProgressKindEnd},
		})
	}
	endProgressTimer := time.AfterFunc(_timeoutUserSelectionEnd, endProgressFunc)

	doneFunc = func() {
		updateProgressTimer.Stop()
		if endProgressTimer.Stop() {
			endProgressFunc()
		}
	}
	return doneFunc, nil
}

// logMessageWriter implements io.Writer on top of window/logMessage.
type logMessageWriter struct {
	client protocol.Client
	ctx    context.Context
	prefix string
}

func (g *gateway) GetLogMessageWriter(ctx context.Context, prefix string) (io.Writer, error) {
	c, _, err := g.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting IDE log message writer: %w", err)
	}
	w := &logMessageWriter{
		client: c,
		ctx:    ctx,
		prefix: prefix,
	}
	return w, nil
}

func (w *logMessageWriter) Write(p []byte) (n int, err error) {
	str := strings.TrimSuffix(string(p), "\n")
	if err := w.client.LogMessage(w.ctx, &protocol.LogMessageParams{
		Message: fmt.Sprintf("[%s] %s", w.prefix, str),
		Type:    protocol.MessageTypeLog,
	}); err != nil {
		return 0, fmt.Errorf("writing to IDE log message writer: %w", err)
	}
	return len(p), nil
}
