package rustdaemon

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid"
	clientworkspace "github.com/uber/rust-lsp/src/rlsd/controller/client-workspace"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"go.uber.org/multierr"
)

// rootFolder returns the folder of s containing path. With nested folders open, the innermost wins.
func rootFolder(s *entity.Session, path string) (entity.WorkspaceFolder, bool) {
	var found entity.WorkspaceFolder
	ok := false
	for _, f := range s.WorkspaceFolders {
		if f.Contains(path) && (!ok || len(f.Key()) > len(found.Key())) {
			found, ok = f, true
		}
	}
	return found, ok
}

// manifestFolder returns the folder a language server runs in for a file: the closest directory
// holding a Cargo.toml, no higher than the editor folder containing the file. That editor folder
// is returned first.
func (c *controller) manifestFolder(s *entity.Session, path string) (entity.WorkspaceFolder, entity.WorkspaceFolder, error) {
	root, ok := rootFolder(s, path)
	if !ok {
		return entity.WorkspaceFolder{}, entity.WorkspaceFolder{}, fmt.Errorf("%s is outside of the open workspace folders", path)
	}
	dir := path
	if isDir, err := c.fs.DirExists(path); err != nil || !isDir {
		dir = filepath.Dir(path)
	}
	if manifestDir, found := c.fs.FindUp(dir, root.Path, _manifestFile); found {
		return root, root.Nested(manifestDir), nil
	}
	return root, root, nil
}

// getOrCreate returns the workspace of folder, creating it in standby on first use. Its state is
// published to the sessions having root open. The bool reports whether it was created.
func (c *controller) getOrCreate(ctx context.Context, root entity.WorkspaceFolder, folder entity.WorkspaceFolder) (clientworkspace.ClientWorkspace, bool, error) {
	w, created, err := c.workspaces.GetOrCreate(ctx, folder, func(folder entity.WorkspaceFolder) (clientworkspace.ClientWorkspace, error) {
		return c.factory.Create(ctx, folder)
	})
	if err != nil {
		return nil, false, fmt.Errorf("creating workspace for %s: %w", folder, err)
	}
	if created {
		c.logger.Infow("workspace created", "folder", folder.Path, "engine", w.Engine())
		c.watcher.Add(folder.Path)
		w.Observe(func(state entity.SessionState) {
			c.publishStatus(root, folder, state)
		})
		c.publishStatus(root, folder, w.State())
	}
	return w, created, nil
}

// publishStatus sends the state of folder to every editor having root open.
func (c *controller) publishStatus(root entity.WorkspaceFolder, folder entity.WorkspaceFolder, state entity.SessionState) {
	ctx := context.Background()
	sessions, err := c.sessions.GetAllWithFolder(ctx, root)
	if err != nil {
		c.logger.Warnw("listing sessions for status", "folder", folder.Path, "error", err)
		return
	}
	status := mapper.SessionStateToStatus(folder, state)
	for _, s := range sessions {
		sessionCtx := context.WithValue(ctx, entity.SessionContextKey, s.UUID)
		if err := c.ideGateway.Status(sessionCtx, status); err != nil {
			c.logger.Debugw("sending status", "session", s.UUID.String(), "error", err)
		}
	}
}

// closeWorkspace stops the language server of folder and releases everything cached for it.
func (c *controller) closeWorkspace(ctx context.Context, folder entity.WorkspaceFolder) error {
	w, err := c.workspaces.Delete(ctx, folder)
	if err != nil {
		return err
	}
	c.watcher.Remove(folder.Path)
	c.graph.Forget(folder)
	c.logger.Infow("workspace closed", "folder", folder.Path)
	return w.Dispose(ctx)
}

// releaseFolder closes the workspaces within root unless another session than id still has it open.
func (c *controller) releaseFolder(ctx context.Context, id uuid.UUID, root entity.WorkspaceFolder) error {
	sessions, err := c.sessions.GetAllWithFolder(ctx, root)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if s.UUID != id {
			return nil
		}
	}

	var errs error
	for _, folder := range c.workspaces.Within(ctx, root) {
		if err := c.closeWorkspace(ctx, folder); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("closing %s: %w", folder, err))
		}
	}
	c.watcher.Remove(root.Path)
	c.graph.Forget(root)
	return errs
}

// targets resolves the workspaces a command applies to: the one of the path in args, or every
// workspace of the session. With create set, missing workspaces are created.
func (c *controller) targets(ctx context.Context, s *entity.Session, args []interface{}, create bool) ([]clientworkspace.ClientWorkspace, error) {
	if path, ok := pathArgument(args); ok {
		root, folder, err := c.manifestFolder(s, path)
		if err != nil {
			return nil, err
		}
		if !create {
			w, err := c.workspaces.Get(ctx, folder)
			if err != nil {
				return nil, err
			}
			return []clientworkspace.ClientWorkspace{w}, nil
		}
		w, _, err := c.getOrCreate(ctx, root, folder)
		if err != nil {
			return nil, err
		}
		return []clientworkspace.ClientWorkspace{w}, nil
	}

	var result []clientworkspace.ClientWorkspace
	for _, root := range s.WorkspaceFolders {
		folders := c.workspaces.Within(ctx, root)
		if len(folders) == 0 && create {
			_, folder, err := c.manifestFolder(s, root.Path)
			if err != nil {
				return nil, err
			}
			folders = []entity.WorkspaceFolder{folder}
		}
		for _, folder := range folders {
			w, _, err := c.getOrCreate(ctx, root, folder)
			if err != nil {
				return nil, err
			}
			result = append(result, w)
		}
	}
	return result, nil
}

func (c *controller) allSessions(ctx context.Context) []*entity.Session {
	sessions, err := c.sessions.GetAll(ctx)
	if err != nil {
		c.logger.Warnw("listing sessions", "error", err)
		return nil
	}
	return sessions
}
