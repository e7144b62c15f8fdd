package model

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Session is the repository layer model for an individual IDE session.
type Session struct {
	UUID             uuid.UUID
	InitializeParams *protocol.InitializeParams
	Conn             *jsonrpc2.Conn
	RootURI          string
	WorkspaceFolders []WorkspaceFolder
	ClientName       string
}

// WorkspaceFolder is the repository layer model for a folder opened in a session.
type WorkspaceFolder struct {
	Path string
	Name string
}

// Status is the payload of the rust/status notification sent to the IDE.
type Status struct {
	Folder  string `json:"folder"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}
