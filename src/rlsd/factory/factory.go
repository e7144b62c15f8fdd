package factory

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"go.lsp.dev/jsonrpc2"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// JSONRPCNotification is a user-defined factory for a JSON-RPC notification.
func JSONRPCNotification(method string, params interface{}) jsonrpc2.Request {
	n, _ := jsonrpc2.NewNotification(method, params)
	return n
}

// WorkspaceFolder returns a folder named name located beneath root.
func WorkspaceFolder(root string, name string) entity.WorkspaceFolder {
	return entity.NewWorkspaceFolder(filepath.Join(root, name), name)
}

// Session returns a session with the given folders open.
func Session(folders ...entity.WorkspaceFolder) *entity.Session {
	s := &entity.Session{
		UUID:             UUID(),
		WorkspaceFolders: folders,
	}
	if len(folders) > 0 {
		s.RootURI = folders[0].URI
	}
	return s
}

// PackageID renders a cargo package id for a path dependency.
func PackageID(name string, dir string) string {
	return fmt.Sprintf("%s 0.1.0 (path+file://%s)", name, filepath.ToSlash(dir))
}
