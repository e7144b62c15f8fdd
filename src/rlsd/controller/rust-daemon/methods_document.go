package rustdaemon

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"go.lsp.dev/protocol"
)

const (
	_languageRust = "rust"
	_extensionRS  = ".rs"
)

// DidOpen makes sure the file's manifest folder has a workspace, starting its language server
// when configured to.
func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	path := params.TextDocument.URI.Filename()
	if !isRustDocument(params.TextDocument.LanguageID, path) {
		return nil
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}
	root, folder, err := c.manifestFolder(s, path)
	if err != nil {
		c.logger.Debugw("ignoring document", "path", path, "reason", err)
		return nil
	}

	w, created, err := c.getOrCreate(ctx, root, folder)
	if err != nil {
		return err
	}
	if created && c.cfg.AutoStartRLS {
		c.async(ctx, func(ctx context.Context) {
			if err := w.Start(ctx); err != nil {
				c.logger.Warnw("starting language server", "folder", folder.Path, "error", err)
			}
		})
	}
	return nil
}

// DidChangeWatchedFiles forwards manifest and toolchain file changes reported by the editor.
func (c *controller) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		c.onFileChanged(change.URI.Filename())
	}
	return nil
}

// onFileChanged invalidates the factories of every known folder containing path, and of the
// folders beneath its directory, such as members of a cargo workspace whose root manifest changed:
// the channel for toolchain files, the cargo metadata for manifests and lock files.
// Downstream factories follow through the graph.
func (c *controller) onFileChanged(path string) {
	var target Invalidator
	switch filepath.Base(path) {
	case toolchain.ToolchainFileTOML, toolchain.ToolchainFileLegacy:
		target = c.channels
	case _manifestFile, _lockFile:
		target = c.manifests
	default:
		return
	}

	dir := entity.NewWorkspaceFolder(filepath.Dir(path), "")
	for _, folder := range c.knownFolders(context.Background()) {
		if folder.Contains(path) || dir.Contains(folder.Path) {
			c.logger.Debugw("invalidating folder", "folder", folder.Path, "file", path)
			c.stats.Counter("invalidations").Inc(1)
			target.Invalidate(folder)
		}
	}
}

// knownFolders lists the workspace folders and the editor folders of every session, without duplicates.
func (c *controller) knownFolders(ctx context.Context) []entity.WorkspaceFolder {
	folders := c.workspaces.Folders(ctx)
	seen := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		seen[f.Key()] = struct{}{}
	}
	for _, s := range c.allSessions(ctx) {
		for _, f := range s.WorkspaceFolders {
			if _, ok := seen[f.Key()]; !ok {
				seen[f.Key()] = struct{}{}
				folders = append(folders, f)
			}
		}
	}
	return folders
}

func isRustDocument(languageID protocol.LanguageIdentifier, path string) bool {
	return languageID == _languageRust ||
		strings.EqualFold(filepath.Ext(path), _extensionRS) ||
		filepath.Base(path) == _manifestFile
}
