package rustdaemon

import (
	"context"
	"fmt"
	"strings"

	clientworkspace "github.com/uber/rust-lsp/src/rlsd/controller/client-workspace"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"github.com/uber/rust-lsp/src/rlsd/internal/typehint"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/multierr"
)

// Commands handled by ExecuteCommand.
const (
	CommandStart       = "rust.start"
	CommandStop        = "rust.stop"
	CommandRestart     = "rust.restart"
	CommandTasks       = "rust.tasks"
	CommandShortenType = "rust.shortenType"
	CommandUpdate      = "rust.update"
	CommandInstall     = "rust.install"
)

// Commands lists every command advertised to the editor.
var Commands = []string{
	CommandStart,
	CommandStop,
	CommandRestart,
	CommandTasks,
	CommandShortenType,
	CommandUpdate,
	CommandInstall,
}

const _defaultHintLength = 30

// DidChangeWorkspaceFolders records the folders of the session. Workspaces beneath a removed
// folder are closed once no session has it open.
func (c *controller) DidChangeWorkspaceFolders(ctx context.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	removed := mapper.ProtocolToWorkspaceFolders(params.Event.Removed)
	var errs error
	for _, folder := range removed {
		if !s.HasFolder(folder) {
			continue
		}
		errs = multierr.Append(errs, c.releaseFolder(ctx, s.UUID, folder))
	}

	folders := make([]entity.WorkspaceFolder, 0, len(s.WorkspaceFolders))
	for _, f := range s.WorkspaceFolders {
		if !containsFolder(removed, f) {
			folders = append(folders, f)
		}
	}
	for _, f := range mapper.ProtocolToWorkspaceFolders(params.Event.Added) {
		if !containsFolder(folders, f) {
			folders = append(folders, f)
			c.watcher.Add(f.Path)
		}
	}
	s.WorkspaceFolders = folders
	if err := c.sessions.Set(ctx, s); err != nil {
		return fmt.Errorf("setting updated session state: %w", err)
	}
	return errs
}

// ExecuteCommand runs one of Commands.
func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}
	c.stats.Tagged(map[string]string{"command": params.Command}).Counter("commands").Inc(1)

	switch params.Command {
	case CommandStart:
		return nil, c.each(ctx, s, params.Arguments, true, clientworkspace.ClientWorkspace.Start)
	case CommandStop:
		return nil, c.each(ctx, s, params.Arguments, false, clientworkspace.ClientWorkspace.Stop)
	case CommandRestart:
		return nil, c.each(ctx, s, params.Arguments, true, clientworkspace.ClientWorkspace.Restart)
	case CommandTasks:
		return c.listTasks(ctx, s, params.Arguments)
	case CommandShortenType:
		return shortenType(params.Arguments)
	case CommandUpdate:
		return c.update(ctx)
	case CommandInstall:
		crate, ok := stringArgument(params.Arguments, 0)
		if !ok {
			return nil, fmt.Errorf("%s expects a crate name", CommandInstall)
		}
		return nil, c.toolchain.EnsureCrate(ctx, crate)
	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
}

func (c *controller) each(ctx context.Context, s *entity.Session, args []interface{}, create bool, fn func(clientworkspace.ClientWorkspace, context.Context) error) error {
	workspaces, err := c.targets(ctx, s, args, create)
	if err != nil {
		return err
	}
	var errs error
	for _, w := range workspaces {
		errs = multierr.Append(errs, fn(w, ctx))
	}
	return errs
}

// listTasks returns the cargo tasks of the folder in args, or of every session folder.
func (c *controller) listTasks(ctx context.Context, s *entity.Session, args []interface{}) ([]entity.Task, error) {
	var folders []entity.WorkspaceFolder
	if path, ok := pathArgument(args); ok {
		_, folder, err := c.manifestFolder(s, path)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	} else {
		for _, root := range s.WorkspaceFolders {
			_, folder, err := c.manifestFolder(s, root.Path)
			if err != nil {
				return nil, err
			}
			folders = append(folders, folder)
		}
	}

	tasks := []entity.Task{}
	for _, folder := range folders {
		tc := taskctx.Root(folder, "tasks", taskctx.WithReporter(c.ideGateway), taskctx.WithStats(c.stats))
		found, err := c.tasks.Get(ctx, tc)
		if err != nil {
			return nil, fmt.Errorf("listing tasks of %s: %w", folder, err)
		}
		tasks = append(tasks, found...)
	}
	return tasks, nil
}

// update installs the latest release of the server, then restarts the running workspaces on it.
func (c *controller) update(ctx context.Context) (string, error) {
	if c.cfg.Engine != entity.EngineRustAnalyzer {
		return "", fmt.Errorf("%s requires the %s engine", CommandUpdate, entity.EngineRustAnalyzer)
	}
	path, err := c.release.Update(ctx)
	if err != nil {
		return "", err
	}
	c.factory.Reset()

	var errs error
	for _, folder := range c.workspaces.Folders(ctx) {
		w, err := c.workspaces.Get(ctx, folder)
		if err != nil || !w.Running() {
			continue
		}
		errs = multierr.Append(errs, w.Restart(ctx))
	}
	return path, errs
}

func shortenType(args []interface{}) (string, error) {
	text, ok := stringArgument(args, 0)
	if !ok {
		return "", fmt.Errorf("%s expects a type", CommandShortenType)
	}
	maxLen := _defaultHintLength
	if len(args) > 1 {
		n, ok := args[1].(float64)
		if !ok || n < 1 {
			return "", fmt.Errorf("%s expects a positive length, got %v", CommandShortenType, args[1])
		}
		maxLen = int(n)
	}
	return typehint.Hint(text, maxLen), nil
}

func stringArgument(args []interface{}, i int) (string, bool) {
	if len(args) <= i {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok && s != ""
}

// pathArgument reads a path or file URI from the first argument.
func pathArgument(args []interface{}) (string, bool) {
	s, ok := stringArgument(args, 0)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(s, uri.FileScheme+"://") {
		return uri.URI(s).Filename(), true
	}
	return s, true
}

func containsFolder(folders []entity.WorkspaceFolder, folder entity.WorkspaceFolder) bool {
	for _, f := range folders {
		if f.Equal(folder) {
			return true
		}
	}
	return false
}
