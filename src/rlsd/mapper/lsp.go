package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// RequestToInitializeParams maps the parameters from a jsconrpc2.Request into protocol.InitializeParams.
func RequestToInitializeParams(req jsonrpc2.Request) (*protocol.InitializeParams, error) {
	params := protocol.InitializeParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToInitializedParams maps the parameters from a jsconrpc2.Request into protocol.InitializedParams.
func RequestToInitializedParams(req jsonrpc2.Request) (*protocol.InitializedParams, error) {
	params := protocol.InitializedParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeWorkspaceFoldersParams maps the parameters from a jsconrpc2.Request into protocol.DidChangeWorkspaceFoldersParams.
func RequestToDidChangeWorkspaceFoldersParams(req jsonrpc2.Request) (*protocol.DidChangeWorkspaceFoldersParams, error) {
	params := protocol.DidChangeWorkspaceFoldersParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidOpenTextDocumentParams maps the parameters from a jsconrpc2.Request into protocol.DidOpenTextDocumentParams.
func RequestToDidOpenTextDocumentParams(req jsonrpc2.Request) (*protocol.DidOpenTextDocumentParams, error) {
	params := protocol.DidOpenTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeWatchedFilesParams maps the parameters from a jsconrpc2.Request into protocol.DidChangeWatchedFilesParams.
func RequestToDidChangeWatchedFilesParams(req jsonrpc2.Request) (*protocol.DidChangeWatchedFilesParams, error) {
	params := protocol.DidChangeWatchedFilesParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToExecuteCommandParams maps the parameters from a jsconrpc2.Request into protocol.ExecuteCommandParams.
// Arguments keep their decoded JSON form: strings, float64 numbers, maps and slices.
func RequestToExecuteCommandParams(req jsonrpc2.Request) (*protocol.ExecuteCommandParams, error) {
	params := protocol.ExecuteCommandParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToWindowProgress maps the parameters of an RLS window/progress notification.
func RequestToWindowProgress(req jsonrpc2.Request) (*model.WindowProgress, error) {
	params := model.WindowProgress{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToProgressParams maps the parameters of a $/progress notification.
func RequestToProgressParams(req jsonrpc2.Request) (*protocol.ProgressParams, error) {
	params := protocol.ProgressParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// WorkDoneProgressValue is the union of the begin, report and end payloads of $/progress.
type WorkDoneProgressValue struct {
	Kind       protocol.WorkDoneProgressKind `json:"kind"`
	Title      string                        `json:"title,omitempty"`
	Message    string                        `json:"message,omitempty"`
	Percentage *uint32                       `json:"percentage,omitempty"`
}

// ProgressParamsToWorkDoneProgress decodes the value of a $/progress notification.
func ProgressParamsToWorkDoneProgress(params *protocol.ProgressParams) (*WorkDoneProgressValue, error) {
	raw, err := json.Marshal(params.Value)
	if err != nil {
		return nil, wrapErrParse(err)
	}
	value := WorkDoneProgressValue{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, wrapErrParse(err)
	}
	return &value, nil
}

// InitializeResultAppendExecuteCommandProvider appends ExecuteCommandOptions into an existing InitializeResult.
// Commands must be unique, and this function will fail if a duplicate is found.
func InitializeResultAppendExecuteCommandProvider(initResult *protocol.InitializeResult, newOptions *protocol.ExecuteCommandOptions) error {
	if initResult.Capabilities.ExecuteCommandProvider == nil {
		initResult.Capabilities.ExecuteCommandProvider = newOptions
		return nil
	}

	if newOptions.Commands == nil {
		return nil
	}

	if initResult.Capabilities.ExecuteCommandProvider.Commands == nil {
		// If the current Commands is nil, just set it to the new value.
		initResult.Capabilities.ExecuteCommandProvider.Commands = newOptions.Commands
	} else {
		// Otherwise, combine with existing Commands and fail on duplicate.
		seen := map[string]interface{}{}
		combined := []string{}
		for _, cmd := range initResult.Capabilities.ExecuteCommandProvider.Commands {
			seen[cmd] = struct{}{}
			combined = append(combined, cmd)
		}
		for _, cmd := range newOptions.Commands {
			if _, ok := seen[cmd]; ok {
				return fmt.Errorf("command %q in ExecuteCommandOptions already exists and cannot be duplicated", cmd)
			}
			combined = append(combined, cmd)
		}
		initResult.Capabilities.ExecuteCommandProvider.Commands = combined
	}

	return nil
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
