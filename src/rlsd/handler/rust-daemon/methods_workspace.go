package rustdaemon

import (
	"context"

	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) DidChangeWorkspaceFolders(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidChangeWorkspaceFoldersParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.rustdaemon.DidChangeWorkspaceFolders(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) ExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToExecuteCommandParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.rustdaemon.ExecuteCommand(ctx, params)
	return reply(ctx, result, err)
}
