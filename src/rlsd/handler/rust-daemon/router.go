package rustdaemon

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	controller "github.com/uber/rust-lsp/src/rlsd/controller/rust-daemon"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// MethodRequestFullShutdown directs the server to shut down on the next JSON-RPC 'exit' method call.
const MethodRequestFullShutdown = "rlsd/requestFullShutdown"

// _methodCancelRequest is sent by editors for requests they no longer wait for.
const _methodCancelRequest = "$/cancelRequest"

type jsonRPCRouter struct {
	rustdaemon controller.Controller
	uuid       uuid.UUID
	stats      tally.Scope
	logger     *zap.SugaredLogger
}

// HandleReq handles routing for a single request.
func (r *jsonRPCRouter) HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	ctx = context.WithValue(ctx, entity.SessionContextKey, r.uuid)
	if r.stats != nil {
		r.stats.Tagged(map[string]string{"method": req.Method()}).Counter("requests").Inc(1)
	}

	switch req.Method() {
	// Lifecycle related methods.
	case protocol.MethodInitialize:
		return r.Initialize(ctx, reply, req)

	case protocol.MethodInitialized:
		return r.Initialized(ctx, reply, req)

	case protocol.MethodShutdown:
		return r.Shutdown(ctx, reply, req)

	case protocol.MethodExit:
		return r.Exit(ctx, reply, req)

	case MethodRequestFullShutdown:
		return r.RequestFullShutdown(ctx, reply, req)

	// Document related methods.
	case protocol.MethodTextDocumentDidOpen:
		return r.DidOpen(ctx, reply, req)

	case protocol.MethodWorkspaceDidChangeWatchedFiles:
		return r.DidChangeWatchedFiles(ctx, reply, req)

	// Only open events matter, the language servers follow the rest themselves.
	case protocol.MethodTextDocumentDidClose, _methodCancelRequest:
		return reply(ctx, nil, nil)

	// Workspace methods
	case protocol.MethodWorkspaceDidChangeWorkspaceFolders:
		return r.DidChangeWorkspaceFolders(ctx, reply, req)

	case protocol.MethodWorkspaceExecuteCommand:
		return r.ExecuteCommand(ctx, reply, req)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (r *jsonRPCRouter) UUID() uuid.UUID {
	return r.uuid
}
