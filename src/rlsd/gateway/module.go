// Package gateway contains the outbound clients of rlsd.
package gateway

import (
	notifier "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"go.uber.org/fx"
)

// Module provides the outbound gateways into an Fx application.
var Module = fx.Options(
	fx.Provide(notifier.New),
)
