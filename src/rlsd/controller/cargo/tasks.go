package cargo

import (
	"context"
	"fmt"
	"strings"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/factorygraph"
	"github.com/uber/rust-lsp/src/rlsd/internal/taskctx"
	"go.uber.org/config"
	"go.uber.org/fx"
)

// TaskParams are inbound parameters to initialize a TaskFactory.
type TaskParams struct {
	fx.In

	Config    config.Provider
	Workspace *WorkspaceFactory
	Stats     tally.Scope
}

// TaskFactory derives the cargo tasks offered for a folder from its workspace metadata.
type TaskFactory struct {
	*factorygraph.Caching[[]entity.Task]

	cargo     string
	workspace *WorkspaceFactory
}

// NewTaskFactory creates the task factory.
func NewTaskFactory(p TaskParams) (*TaskFactory, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}
	f := &TaskFactory{
		cargo:     cfg.CargoPath,
		workspace: p.Workspace,
	}
	f.Caching = factorygraph.NewCaching(f.compute,
		factorygraph.WithStats(p.Stats.SubScope("cargo_tasks")),
		factorygraph.DependsOn(p.Workspace),
	)
	return f, nil
}

func (f *TaskFactory) compute(ctx context.Context, tc *taskctx.Context) ([]entity.Task, error) {
	metadata, err := f.workspace.Get(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("resolving cargo workspace: %w", err)
	}
	return Tasks(f.cargo, metadata, tc.Folder()), nil
}

// Tasks lists a check task for every member located in folder, followed by a run task for each
// of its binaries and a test task for each of its integration tests. Duplicates are dropped.
func Tasks(cargo string, metadata *entity.WorkspaceMetadata, folder entity.WorkspaceFolder) []entity.Task {
	var tasks []entity.Task
	seen := make(map[string]struct{})
	add := func(member entity.Package, group entity.TaskGroup, args ...string) {
		t := entity.Task{
			Label:   fmt.Sprintf("%s (%s)", strings.Join(append([]string{"cargo"}, args...), " "), member.Name),
			Member:  member.Name,
			Command: append([]string{cargo}, args...),
			Cwd:     member.ManifestDir,
			Group:   group,
		}
		if _, ok := seen[t.Identity()]; ok {
			return
		}
		seen[t.Identity()] = struct{}{}
		tasks = append(tasks, t)
	}

	for _, member := range metadata.Members {
		if !folder.Contains(member.ManifestDir) {
			continue
		}
		add(member, entity.TaskGroupBuild, "check")
		for _, t := range member.TargetsOfKind(entity.TargetKindBin) {
			add(member, entity.TaskGroupBuild, "run", "--bin", t.Name)
		}
		for _, t := range member.TargetsOfKind(entity.TargetKindTest) {
			add(member, entity.TaskGroupTest, "test", "--test", t.Name)
		}
	}
	return tasks
}
