package app

import (
	"context"
	"time"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/gateway"
	"github.com/uber/rust-lsp/src/rlsd/handler"
	"github.com/uber/rust-lsp/src/rlsd/internal/clock"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/internal/jsonrpcfx"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile"
	"go.uber.org/fx"
)

// Module defines the rust-daemon application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	serverinfofile.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(clock.New),
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "rlsd",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        "local",
			RuntimeEnvironment: "local",
		}
	}),
)
