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
)

func TestDocumentMethods(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		setReturn func(c *rustdaemonmock.MockController, err error)
		params    interface{}
	}{
		{
			name:   "DidOpen",
			method: protocol.MethodTextDocumentDidOpen,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().DidOpen(gomock.Any(), gomock.Any()).Return(err)
			},
			params: protocol.DidOpenTextDocumentParams{
				TextDocument: protocol.TextDocumentItem{URI: "file:///home/user/project/src/main.rs", LanguageID: "rust"},
			},
		},
		{
			name:   "DidChangeWatchedFiles",
			method: protocol.MethodWorkspaceDidChangeWatchedFiles,
			setReturn: func(c *rustdaemonmock.MockController, err error) {
				c.EXPECT().DidChangeWatchedFiles(gomock.Any(), gomock.Any()).Return(err)
			},
			params: protocol.DidChangeWatchedFilesParams{
				Changes: []*protocol.FileEvent{{Type: protocol.FileChangeTypeChanged, URI: "file:///home/user/project/Cargo.toml"}},
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
			req, _ := jsonrpc2.NewNotification(tt.method, tt.params)
			assert.NoError(t, r.HandleReq(ctx, replier, req))

			// Invalid params.
			req, _ = jsonrpc2.NewNotification(tt.method, 5)
			assert.Error(t, r.HandleReq(ctx, replier, req))

			// Controller error.
			tt.setReturn(c, errors.New("err"))
			req, _ = jsonrpc2.NewNotification(tt.method, tt.params)
			assert.Error(t, r.HandleReq(ctx, replier, req))
		})
	}
}
