package mapper

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// SessionToModel maps a Session entity to its model equivalent.
func SessionToModel(f *entity.Session) *model.Session {
	var folders []model.WorkspaceFolder
	for _, wf := range f.WorkspaceFolders {
		folders = append(folders, model.WorkspaceFolder{Path: wf.Path, Name: wf.Name})
	}
	return &model.Session{
		UUID:             f.UUID,
		InitializeParams: f.InitializeParams,
		Conn:             f.Conn,
		RootURI:          string(f.RootURI),
		WorkspaceFolders: folders,
		ClientName:       string(f.ClientName),
	}
}

// ModelToSession maps a model Session to its entity equivalent.
func ModelToSession(f *model.Session) (*entity.Session, error) {
	var folders []entity.WorkspaceFolder
	for _, wf := range f.WorkspaceFolders {
		folders = append(folders, entity.NewWorkspaceFolder(wf.Path, wf.Name))
	}
	return &entity.Session{
		UUID:             f.UUID,
		InitializeParams: f.InitializeParams,
		Conn:             f.Conn,
		RootURI:          protocol.DocumentURI(f.RootURI),
		WorkspaceFolders: folders,
		ClientName:       entity.ClientName(f.ClientName),
	}, nil
}

// UUIDToSession initializes a new Session entity with the assigned uuid and connection.
func UUIDToSession(u uuid.UUID, c *jsonrpc2.Conn) *entity.Session {
	return &entity.Session{
		UUID: u,
		Conn: c,
	}
}

// ContextToSessionUUID extracts the UUID from a context
func ContextToSessionUUID(c context.Context) (uuid.UUID, error) {
	s, ok := c.Value(entity.SessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, &errors.NoSessionFoundError{}
	}
	return s, nil
}

// InitializeParamsToWorkspaceFolders returns the folders opened by the editor.
// Clients that do not support workspace folders report a single root URI instead.
func InitializeParamsToWorkspaceFolders(params *protocol.InitializeParams) []entity.WorkspaceFolder {
	if len(params.WorkspaceFolders) > 0 {
		return ProtocolToWorkspaceFolders(params.WorkspaceFolders)
	}
	if params.RootURI != "" {
		return []entity.WorkspaceFolder{entity.WorkspaceFolderFromURI(string(params.RootURI), "")}
	}
	if params.RootPath != "" {
		return []entity.WorkspaceFolder{entity.NewWorkspaceFolder(params.RootPath, "")}
	}
	return nil
}

// ProtocolToWorkspaceFolders maps LSP workspace folders to entities.
func ProtocolToWorkspaceFolders(folders []protocol.WorkspaceFolder) []entity.WorkspaceFolder {
	result := make([]entity.WorkspaceFolder, 0, len(folders))
	for _, f := range folders {
		result = append(result, entity.WorkspaceFolderFromURI(f.URI, f.Name))
	}
	return result
}

// SessionStateToStatus maps the state of a folder's session to the rust/status payload.
func SessionStateToStatus(folder entity.WorkspaceFolder, state entity.SessionState) *model.Status {
	return &model.Status{
		Folder:  string(folder.URI),
		State:   state.Kind.String(),
		Message: state.Message,
	}
}

// ReleaseToModel maps a Release entity to its persisted form.
func ReleaseToModel(r entity.Release) model.InstalledRelease {
	return model.InstalledRelease{ID: r.ID, Tag: r.Tag}
}

// ModelToRelease maps a persisted release to its entity.
func ModelToRelease(m model.InstalledRelease) entity.Release {
	return entity.Release{ID: m.ID, Tag: m.Tag}
}
