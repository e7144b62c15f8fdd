package handler

import (
	controller "github.com/uber/rust-lsp/src/rlsd/controller"
	rustdaemon "github.com/uber/rust-lsp/src/rlsd/controller/rust-daemon"
	handler "github.com/uber/rust-lsp/src/rlsd/handler/rust-daemon"
	"github.com/uber/rust-lsp/src/rlsd/repository/session"
	"go.uber.org/fx"
)

// Module provides the rust-daemon server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(outputEngineInfo),
	fx.Invoke(func(m handler.Handler) {}),
	fx.Invoke(func(m rustdaemon.Controller) {}),
)
