// Package controller provides the business logic of rlsd into an Fx application.
package controller

import (
	"github.com/uber/rust-lsp/src/rlsd/controller/cargo"
	clientworkspace "github.com/uber/rust-lsp/src/rlsd/controller/client-workspace"
	"github.com/uber/rust-lsp/src/rlsd/controller/release"
	rustdaemon "github.com/uber/rust-lsp/src/rlsd/controller/rust-daemon"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/repository/state"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(rustdaemon.New),
	fx.Provide(toolchain.New),
	fx.Provide(toolchain.NewChannelFactory),
	fx.Provide(cargo.NewWorkspaceFactory),
	fx.Provide(cargo.NewTaskFactory),
	fx.Provide(release.New),
	fx.Provide(clientworkspace.New),
	fx.Provide(state.New),
)
