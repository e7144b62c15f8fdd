package entity

import (
	"path/filepath"
	"runtime"
	"strings"

	"go.lsp.dev/uri"
)

// WorkspaceFolder is an editor-visible project root, or a nested manifest root derived from one.
// Folders are compared by their canonical path, never by identity, since nested folders are recreated on demand.
type WorkspaceFolder struct {
	Path string  `json:"path" zap:"path"`
	Name string  `json:"name" zap:"name"`
	URI  uri.URI `json:"uri" zap:"uri"`
}

// NewWorkspaceFolder creates a folder rooted at path. An empty name defaults to the base name of the path.
func NewWorkspaceFolder(path string, name string) WorkspaceFolder {
	path = filepath.Clean(path)
	if name == "" {
		name = filepath.Base(path)
	}
	return WorkspaceFolder{
		Path: path,
		Name: name,
		URI:  uri.File(path),
	}
}

// WorkspaceFolderFromURI creates a folder from a file URI sent by the editor.
// Anything other than a file URI is treated as a plain path.
func WorkspaceFolderFromURI(u string, name string) WorkspaceFolder {
	if strings.HasPrefix(u, uri.FileScheme+"://") {
		return NewWorkspaceFolder(uri.URI(u).Filename(), name)
	}
	return NewWorkspaceFolder(u, name)
}

// Key returns the stable identity of the folder, used to key caches and registries.
func (f WorkspaceFolder) Key() string {
	key := filepath.Clean(f.Path)
	if caseInsensitiveFS() {
		key = strings.ToLower(key)
	}
	return key
}

// Equal reports whether both folders refer to the same directory.
func (f WorkspaceFolder) Equal(other WorkspaceFolder) bool {
	return f.Key() == other.Key()
}

// Contains reports whether path is the folder itself or located beneath it.
func (f WorkspaceFolder) Contains(path string) bool {
	rel, err := filepath.Rel(f.Key(), keyOf(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Nested returns a folder representing a manifest root located beneath this folder.
func (f WorkspaceFolder) Nested(path string) WorkspaceFolder {
	rel, err := filepath.Rel(f.Path, path)
	if err != nil || rel == "." {
		return NewWorkspaceFolder(path, f.Name)
	}
	return NewWorkspaceFolder(path, f.Name+"/"+filepath.ToSlash(rel))
}

// String implements fmt.Stringer.
func (f WorkspaceFolder) String() string {
	return f.Name + " (" + f.Path + ")"
}

func keyOf(path string) string {
	path = filepath.Clean(path)
	if caseInsensitiveFS() {
		path = strings.ToLower(path)
	}
	return path
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "windows"
}
