// Package rustdaemon implements the rust-daemon service's JSON-RPC handlers.
package rustdaemon

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	controller "github.com/uber/rust-lsp/src/rlsd/controller/rust-daemon"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/jsonrpcfx"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// Handler accepts editor connections and routes their requests to the controller.
type Handler interface {
	jsonrpcfx.ConnectionManager
}

type handler struct {
	ctrl   controller.Controller
	stats  tally.Scope
	logger *zap.SugaredLogger
}

// New constructs a new rust-daemon Handler and registers it with the JSON-RPC inbound.
func New(ctrl controller.Controller, jsonrpcmod jsonrpcfx.JSONRPCModule, stats tally.Scope, logger *zap.SugaredLogger) (Handler, error) {
	h := &handler{
		ctrl:   ctrl,
		stats:  stats.SubScope("json_rpc"),
		logger: logger,
	}
	if err := jsonrpcmod.RegisterConnectionManager(h); err != nil {
		return nil, err
	}
	return h, nil
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (h *handler) NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router jsonrpcfx.Router, err error) {
	id, err := h.ctrl.InitSession(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}

	return &jsonRPCRouter{
		rustdaemon: h.ctrl,
		uuid:       id,
		stats:      h.stats,
		logger:     h.logger.With("session", id.String()),
	}, nil
}

// RemoveConnection cleans up a closed connection.
func (h *handler) RemoveConnection(ctx context.Context, id uuid.UUID) {
	// Ensure session is removed even if no Exit call has been received.
	ctx = context.WithValue(ctx, entity.SessionContextKey, id)
	if err := h.ctrl.EndSession(ctx, id); err != nil {
		h.logger.Warnw("ending session", "session", id.String(), "error", err)
	}
}
