// Package cargo resolves workspace metadata and the task list of a folder through cargo.
package cargo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/controller/toolchain"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"github.com/uber/rust-lsp/src/rlsd/internal/factorygraph"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_taskMetadata    = "cargo metadata"
	_metadataTimeout = time.Minute
)

// Params are inbound parameters to initialize the cargo factories.
type Params struct {
	fx.In

	Config    config.Provider
	Toolchain toolchain.Toolchain
	Channels  *toolchain.ChannelFactory
	Executor  executor.Executor
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
}

// WorkspaceFactory resolves the cargo workspace of a folder with `cargo metadata`.
// A change of the folder's toolchain channel invalidates it.
type WorkspaceFactory struct {
	*factorygraph.Caching[*entity.WorkspaceMetadata]

	cargo     string
	channels  *toolchain.ChannelFactory
	toolchain toolchain.Toolchain
	executor  executor.Executor
	logger    *zap.SugaredLogger
}

// NewWorkspaceFactory creates the workspace metadata factory.
func NewWorkspaceFactory(p Params) (*WorkspaceFactory, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}
	f := &WorkspaceFactory{
		cargo:     cfg.CargoPath,
		channels:  p.Channels,
		toolchain: p.Toolchain,
		executor:  p.Executor,
		logger:    p.Logger.With("plugin", "cargo-workspace"),
	}
	f.Caching = factorygraph.NewCaching(f.compute,
		factorygraph.WithStats(p.Stats.SubScope("cargo_workspace")),
		factorygraph.DependsOn(p.Channels),
	)
	return f, nil
}

func (f *WorkspaceFactory) compute(ctx context.Context, tc *taskctx.Context) (*entity.WorkspaceMetadata, error) {
	channel, err := f.channels.Get(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("resolving toolchain channel: %w", err)
	}

	return taskctx.SubTask(ctx, tc, _taskMetadata, func(ctx context.Context, tc *taskctx.Context) (*entity.WorkspaceMetadata, error) {
		raw, err := taskctx.Timed(ctx, tc, "metadata", func(ctx context.Context) (*model.CargoMetadata, error) {
			return f.metadata(ctx, channel, tc.Folder())
		})
		if err != nil {
			return nil, err
		}
		metadata, err := ResolveMetadata(raw)
		if err != nil {
			return nil, err
		}
		f.logger.Infow("resolved cargo workspace", "folder", tc.Folder().Path, "members", len(metadata.Members), "packages", len(metadata.Packages))
		return metadata, nil
	})
}

func (f *WorkspaceFactory) metadata(ctx context.Context, channel string, folder entity.WorkspaceFolder) (*model.CargoMetadata, error) {
	name, args := f.toolchain.Command(channel, f.cargo, "metadata", "--format-version", "1", "--no-deps")
	out, err := f.executor.Exec(ctx, name, args, executor.Options{Cwd: folder.Path, Timeout: _metadataTimeout})
	if err != nil {
		return nil, fmt.Errorf("running cargo metadata: %w", err)
	}

	var raw model.CargoMetadata
	if err := json.Unmarshal([]byte(out.Stdout), &raw); err != nil {
		return nil, &errors.ResolutionError{Tool: _taskMetadata, Reason: err.Error()}
	}
	return &raw, nil
}

// ResolveMetadata maps raw cargo metadata into a WorkspaceMetadata with packages sorted members first.
// Every declared member must match exactly one package: by id, or by name when no id matches.
func ResolveMetadata(raw *model.CargoMetadata) (*entity.WorkspaceMetadata, error) {
	packages := make([]entity.Package, len(raw.Packages))
	for i, p := range raw.Packages {
		packages[i] = mapper.CargoPackageToEntity(p)
	}

	for _, member := range raw.WorkspaceMembers {
		i, err := matchMember(member, packages)
		if err != nil {
			return nil, err
		}
		packages[i].IsMember = true
	}

	sort.SliceStable(packages, func(i, j int) bool {
		if packages[i].IsMember != packages[j].IsMember {
			return packages[i].IsMember
		}
		return packages[i].Name < packages[j].Name
	})

	metadata := &entity.WorkspaceMetadata{
		RootPath:       raw.WorkspaceRoot,
		BuildOutputDir: raw.TargetDirectory,
		Packages:       packages,
	}
	for _, p := range packages {
		if p.IsMember {
			metadata.Members = append(metadata.Members, p)
		}
	}
	return metadata, nil
}

func matchMember(member string, packages []entity.Package) (int, error) {
	for i, p := range packages {
		if p.ID != "" && p.ID == member {
			return i, nil
		}
	}

	name := PackageIDName(member)
	match := -1
	for i, p := range packages {
		if p.Name != name {
			continue
		}
		if match >= 0 {
			return 0, &errors.ResolutionError{Tool: _taskMetadata, Reason: fmt.Sprintf("workspace member %q matches more than one package", member)}
		}
		match = i
	}
	if match < 0 {
		return 0, &errors.ResolutionError{Tool: _taskMetadata, Reason: fmt.Sprintf("workspace member %q not found in packages", member)}
	}
	return match, nil
}

// PackageIDName extracts the package name from a cargo package id. Both the
// "name version (source)" form and the "source#name@version" form are understood.
func PackageIDName(id string) string {
	if name, _, ok := strings.Cut(id, " "); ok {
		return name
	}
	source, fragment, ok := strings.Cut(id, "#")
	if !ok {
		return id
	}
	if name, _, ok := strings.Cut(fragment, "@"); ok {
		return name
	}
	// Only a version follows the '#', the name is the last path segment of the source.
	source = strings.TrimRight(source, "/")
	return source[strings.LastIndex(source, "/")+1:]
}
