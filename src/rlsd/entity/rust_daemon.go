// Package entity contains the domain logic for the rlsd service.
package entity

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// Session entity representing a single connected editor.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	Conn             *jsonrpc2.Conn             `json:"-" zap:"-"`
	RootURI          protocol.DocumentURI       `json:"rootUri" zap:"rootUri"`
	WorkspaceFolders []WorkspaceFolder          `json:"workspaceFolders" zap:"-"`
	ClientName       ClientName                 `json:"clientName" zap:"clientName"`
}

// HasFolder reports whether the session has the given folder open.
func (s *Session) HasFolder(folder WorkspaceFolder) bool {
	for _, f := range s.WorkspaceFolders {
		if f.Equal(folder) {
			return true
		}
	}
	return false
}

// ClientName identifies the name that the will be set in the initialization parameters for a given client.
type ClientName string

const (
	// ClientNameVSCode is the name of the VSCode client.
	ClientNameVSCode ClientName = "Visual Studio Code"
	// ClientNameCursor is the name of the Cursor client.
	ClientNameCursor ClientName = "Cursor"
)

// IsVSCodeBased returns true if the client is a VS Code based client.
func (c ClientName) IsVSCodeBased() bool {
	return c == ClientNameVSCode || c == ClientNameCursor
}
