package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/rust-lsp/idl/mock/jsonrpc2mock"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/factory"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestRegisterClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	g := gateway{
		clients:     make(map[uuid.UUID]protocol.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      zap.NewNop(),
	}

	for i := 0; i < 10; i++ {
		id := factory.UUID()
		mockConn := jsonrpc2mock.NewMockConn(ctrl)
		var conn jsonrpc2.Conn = mockConn
		err := g.RegisterClient(ctx, id, &conn)
		assert.NoError(t, err)
	}

	assert.Len(t, g.clients, 10)
	assert.Len(t, g.connections, 10)
}

func TestDeregisterClient(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	g := gateway{
		clients:     make(map[uuid.UUID]protocol.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      zap.NewNop(),
	}

	// Set up 10 sample clients.
	for i := 0; i < 10; i++ {
		mockConn := jsonrpc2mock.NewMockConn(ctrl)
		var conn jsonrpc2.Conn = mockConn
		err := g.RegisterClient(ctx, factory.UUID(), &conn)
		require.NoError(t, err)
	}

	// Remove clients one by one and confirm removal.
	for key := range g.clients {
		assert.NotNil(t, g.clients[key])
		err := g.DeregisterClient(ctx, key)
		assert.NoError(t, err)
		assert.Nil(t, g.clients[key])
	}
	assert.Len(t, g.clients, 0)
	assert.Len(t, g.connections, 0)
}

func TestShowMessage(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	messageParams := &protocol.ShowMessageParams{
		Message: "rust-analyzer is not installed. Download it now?",
		Type:    protocol.MessageTypeInfo,
	}

	t.Run("notification success", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessage), gomock.Eq(messageParams)).Return(nil)
		err := g.ShowMessage(ctx, messageParams)
		assert.NoError(t, err)
	})
	t.Run("notification failure", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessage), gomock.Eq(messageParams)).Return(errors.New("error"))
		err := g.ShowMessage(ctx, messageParams)
		assert.Error(t, err)
	})
	t.Run("invalid context", func(t *testing.T) {
		ctx := context.Background()
		err := g.ShowMessage(ctx, messageParams)
		assert.Error(t, err)
	})
	t.Run("client not found", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
		err := g.ShowMessage(ctx, messageParams)
		assert.Error(t, err)
	})
}

func TestShowMessageRequest(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	messageParams := &protocol.ShowMessageRequestParams{
		Message: "rust-analyzer is not installed. Download it now?",
		Type:    protocol.MessageTypeInfo,
	}

	t.Run("call success", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(nil).Times(2)
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessageRequest), gomock.Eq(messageParams), gomock.Any()).Return(jsonrpc2.NewNumberID(5), nil)
		_, err := g.ShowMessageRequest(ctx, messageParams)
		assert.NoError(t, err)
	})
	t.Run("call failure", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(nil).Times(2)
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessageRequest), gomock.Eq(messageParams), gomock.Any()).Return(jsonrpc2.NewNumberID(5), errors.New("error"))
		_, err := g.ShowMessageRequest(ctx, messageParams)
		assert.Error(t, err)
	})
	t.Run("progress create failure", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), errors.New("error"))
		_, err := g.ShowMessageRequest(ctx, messageParams)
		assert.Error(t, err)
	})
	t.Run("invalid context", func(t *testing.T) {
		ctx := context.Background()
		_, err := g.ShowMessageRequest(ctx, messageParams)
		assert.Error(t, err)
	})
	t.Run("client not found", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
		_, err := g.ShowMessageRequest(ctx, messageParams)
		assert.Error(t, err)
	})
}

func TestShowWaitingForUserSelection(t *testing.T) {
	id := factory.UUID()
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
	ctrl := gomock.NewController(t)
	mockConn := jsonrpc2mock.NewMockConn(ctrl)

	g := gateway{
		logger:      zap.NewNop(),
		clients:     make(map[uuid.UUID]protocol.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
	}

	var conn jsonrpc2.Conn = mockConn
	g.RegisterClient(ctx, id, &conn)

	t.Run("success without delay", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(nil).Times(2)
		done, err := g.showWaitingForUserSelection(ctx)
		done()
		assert.NoError(t, err)
	})

	t.Run("success with delay", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(nil).Times(3)
		done, err := g.showWaitingForUserSelection(ctx)
		time.Sleep(_timeoutUserSelectionMoreInfo + 1*time.Second)
		done()
		assert.NoError(t, err)
	})

	t.Run("create progress error", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), errors.New("sample"))

		_, err := g.showWaitingForUserSelection(ctx)
		assert.Error(t, err)
	})

	t.Run("start progress error", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(errors.New("sample"))

		_, err := g.showWaitingForUserSelection(ctx)
		assert.Error(t, err)
	})
}

func TestLogMessage(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	logMessageParams := &protocol.LogMessageParams{
		Message: "sample message",
		Type:    protocol.MessageTypeInfo,
	}

	t.Run("notification success", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(logMessageParams)).Return(nil)
		err := g.LogMessage(ctx, logMessageParams)
		assert.NoError(t, err)
	})
	t.Run("notification failure", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(logMessageParams)).Return(errors.New("error"))
		err := g.LogMessage(ctx, logMessageParams)
		assert.Error(t, err)
	})
	t.Run("invalid context", func(t *testing.T) {
		ctx := context.Background()
		err := g.LogMessage(ctx, logMessageParams)
		assert.Error(t, err)
	})
	t.Run("client not found", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
		err := g.LogMessage(ctx, logMessageParams)
		assert.Error(t, err)
	})
}

func TestGetLogMessageWriter(t *testing.T) {
	g, _, ctx := getTestGateway(t)

	t.Run("success", func(t *testing.T) {
		writer, err := g.GetLogMessageWriter(ctx, "sample")
		assert.NoError(t, err)
		assert.NotNil(t, writer)
	})
	t.Run("invalid context", func(t *testing.T) {
		ctx := context.Background()
		writer, err := g.GetLogMessageWriter(ctx, "sample")
		assert.Error(t, err)
		assert.Nil(t, writer)
	})
	t.Run("client not found", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
		writer, err := g.GetLogMessageWriter(ctx, "sample")
		assert.Error(t, err)
		assert.Nil(t, writer)
	})
}

func TestWrite(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	sampleMsg := "sample message"
	prefix := "my-prefix"
	expectedLogMessageParams := &protocol.LogMessageParams{
		Message: fmt.Sprintf("[%s] %s", prefix, sampleMsg),
		Type:    protocol.MessageTypeLog,
	}

	t.Run("notification success", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(expectedLogMessageParams)).Return(nil)
		writer, err := g.GetLogMessageWriter(ctx, prefix)
		assert.NoError(t, err)
		assert.NotNil(t, writer)
		n, err := writer.Write([]byte(sampleMsg))
		assert.NoError(t, err)
		assert.Equal(t, len([]byte(sampleMsg)), n)
	})
	t.Run("notification failure", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowLogMessage), gomock.Eq(expectedLogMessageParams)).Return(errors.New("sample"))
		writer, err := g.GetLogMessageWriter(ctx, prefix)
		assert.NoError(t, err)
		assert.NotNil(t, writer)
		n, err := writer.Write([]byte(sampleMsg))
		assert.Error(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestConfirm(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	expectPrompt := func(answer *protocol.MessageActionItem, err error) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).Return(nil).Times(2)
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWindowShowMessageRequest), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, params, result any) (jsonrpc2.ID, error) {
				p := params.(*protocol.ShowMessageRequestParams)
				assert.Equal(t, "Install rust-src?", p.Message)
				assert.Equal(t, []protocol.MessageActionItem{{Title: "Install"}, {Title: "Cancel"}}, p.Actions)
				*(result.(**protocol.MessageActionItem)) = answer
				return jsonrpc2.NewNumberID(5), err
			})
	}

	t.Run("accepted", func(t *testing.T) {
		expectPrompt(&protocol.MessageActionItem{Title: "Install"}, nil)
		ok, err := g.Confirm(ctx, "Install rust-src?", "Install")
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("cancelled", func(t *testing.T) {
		expectPrompt(&protocol.MessageActionItem{Title: "Cancel"}, nil)
		ok, err := g.Confirm(ctx, "Install rust-src?", "Install")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("dismissed", func(t *testing.T) {
		expectPrompt(nil, nil)
		ok, err := g.Confirm(ctx, "Install rust-src?", "Install")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("call failure", func(t *testing.T) {
		expectPrompt(nil, errors.New("error"))
		ok, err := g.Confirm(ctx, "Install rust-src?", "Install")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestStatus(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)

	status := &model.Status{Folder: "file:///home/user/project", State: "progress", Message: "40%"}

	t.Run("notification success", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(MethodRustStatus), gomock.Eq(status)).Return(nil)
		assert.NoError(t, g.Status(ctx, status))
	})
	t.Run("notification failure", func(t *testing.T) {
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(MethodRustStatus), gomock.Eq(status)).Return(errors.New("error"))
		assert.Error(t, g.Status(ctx, status))
	})
	t.Run("invalid context", func(t *testing.T) {
		assert.Error(t, g.Status(context.Background(), status))
	})
}

func TestBegin(t *testing.T) {
	g, mockConn, ctx := getTestGateway(t)
	folder := entity.NewWorkspaceFolder("/home/user/project", "project")

	t.Run("reports begin and end once", func(t *testing.T) {
		var token protocol.ProgressToken
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), nil)
		mockConn.EXPECT().Notify(gomock.Eq(ctx), gomock.Eq(protocol.MethodProgress), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, params any) error {
				p := params.(*protocol.ProgressParams)
				token = p.Token
				begin := p.Value.(*protocol.WorkDoneProgressBegin)
				assert.Equal(t, "cargo metadata / rustup show", begin.Title)
				assert.Equal(t, "project", begin.Message)
				return nil
			})
		end := g.Begin(ctx, folder, "cargo metadata / rustup show")

		mockConn.EXPECT().Notify(gomock.Any(), gomock.Eq(protocol.MethodProgress), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, params any) error {
				p := params.(*protocol.ProgressParams)
				assert.Equal(t, token.String(), p.Token.String())
				assert.IsType(t, &protocol.WorkDoneProgressEnd{}, p.Value)
				return nil
			})
		end()
		end()
	})

	t.Run("create failure is not fatal", func(t *testing.T) {
		mockConn.EXPECT().Call(gomock.Eq(ctx), gomock.Eq(protocol.MethodWorkDoneProgressCreate), gomock.Any(), gomock.Any()).Return(jsonrpc2.NewNumberID(4), errors.New("error"))
		end := g.Begin(ctx, folder, "cargo metadata")
		assert.NotPanics(t, end)
	})

	t.Run("no session", func(t *testing.T) {
		end := g.Begin(context.Background(), folder, "cargo metadata")
		assert.NotPanics(t, end)
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func getTestGateway(t *testing.T) (Gateway, *jsonrpc2mock.MockConn, context.Context) {
	id := factory.UUID()
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
	ctrl := gomock.NewController(t)

	mockConn := jsonrpc2mock.NewMockConn(ctrl)
	var conn jsonrpc2.Conn = mockConn
	g := New(zap.NewNop())
	g.RegisterClient(ctx, id, &conn)
	return g, mockConn, ctx
}
