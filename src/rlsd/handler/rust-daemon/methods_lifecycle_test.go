package rustdaemon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uber/rust-lsp/src/rlsd/controller/rust-daemon/rustdaemonmock"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name             string
		params           interface{}
		controllerResult *protocol.InitializeResult
		controllerError  error
		wantErr          bool
	}{
		{
			name:            "error from controller",
			params:          protocol.InitializeParams{},
			controllerError: errors.New("controller error"),
			wantErr:         true,
		},
		{
			name:             "no error from controller",
			params:           protocol.InitializeParams{RootURI: "file:///home/user/project"},
			controllerResult: &protocol.InitializeResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx := context.Background()

			var replied interface{}
			replier := func(ctx context.Context, result interface{}, err error) error {
				replied = result
				return err
			}

			c := rustdaemonmock.NewMockController(ctrl)
			c.EXPECT().Initialize(gomock.Any(), gomock.Any()).Return(tt.controllerResult, tt.controllerError)

			r := jsonRPCRouter{rustdaemon: c}
			req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), protocol.MethodInitialize, tt.params)
			err := r.HandleReq(ctx, replier, req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, replied)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.controllerResult, replied)
			}
		})
	}

	t.Run("invalid params", func(t *testing.T) {
		r := jsonRPCRouter{rustdaemon: rustdaemonmock.NewMockController(gomock.NewController(t))}
		req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), protocol.MethodInitialize, 5)
		assert.Error(t, r.HandleReq(context.Background(), newMockReplier(), req))
	})
}

func TestLifecycleMethods(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		setReturn func(c *rustdaemonmock.MockController, err error)
		params    interface{}
	}{
		{
			name:   "Initialized",
			method: protocol.MethodInitialized,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().Initialized(gomock.Any(), gomock.Any()).Return(err)
			},
			params: protocol.InitializedParams{},
		},
		{
			name:   "Shutdown",
			method: protocol.MethodShutdown,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().Shutdown(gomock.Any()).Return(err)
			},
		},
		{
			name:   "Exit",
			method: protocol.MethodExit,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().Exit(gomock.Any()).Return(err)
			},
		},
		{
			name:   "RequestFullShutdown",
			method: MethodRequestFullShutdown,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().RequestFullShutdown(gomock.Any()).Return(err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx := context.Background()
			replier := newMockReplier()

			c := rustdaemonmock.NewMockController(ctrl)
			r := jsonRPCRouter{rustdaemon: c}

			// Valid params.
			tt.setReturn(c, nil)
			req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, tt.params)
			assert.NoError(t, r.HandleReq(ctx, replier, req))

			// Invalid params.
			if tt.params != nil {
				req, _ = jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, 5)
				assert.Error(t, r.HandleReq(ctx, replier, req))
			}

			// Controller error.
			tt.setReturn(c, errors.New("err"))
			req, _ = jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, tt.params)
			assert.Error(t, r.HandleReq(ctx, replier, req))
		})
	}
}

func TestExitRepliesBeforeShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := rustdaemonmock.NewMockController(ctrl)

	var replied bool
	replier := func(ctx context.Context, result interface{}, err error) error {
		replied = true
		return errors.New("connection closed")
	}
	c.EXPECT().Exit(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		assert.True(t, replied)
		return nil
	})

	r := jsonRPCRouter{rustdaemon: c, logger: zap.NewNop().Sugar()}
	req, _ := jsonrpc2.NewNotification(protocol.MethodExit, nil)
	assert.NoError(t, r.HandleReq(context.Background(), replier, req))
}
