// Package workspace keeps the per-folder language server supervisors, keyed by folder identity.
package workspace

import (
	"context"
	"sort"
	"sync"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
)

// Repository holds at most one W per workspace folder. Entries are removed explicitly when their
// folder closes.
type Repository[W any] interface {
	// GetOrCreate returns the entry for folder, calling create when there is none. The bool reports
	// whether the entry was created by this call.
	GetOrCreate(ctx context.Context, folder entity.WorkspaceFolder, create func(entity.WorkspaceFolder) (W, error)) (W, bool, error)
	Get(ctx context.Context, folder entity.WorkspaceFolder) (W, error)
	// Delete removes and returns the entry for folder.
	Delete(ctx context.Context, folder entity.WorkspaceFolder) (W, error)
	// Folders returns the folders with an entry, ordered by key.
	Folders(ctx context.Context) []entity.WorkspaceFolder
	// Within returns the folders with an entry located in or beneath folder, ordered by key.
	Within(ctx context.Context, folder entity.WorkspaceFolder) []entity.WorkspaceFolder
}

type record[W any] struct {
	folder entity.WorkspaceFolder
	value  W
}

type repository[W any] struct {
	mu      sync.Mutex
	records map[string]record[W]
	stats   tally.Scope
}

// New returns an empty in-memory Repository.
func New[W any](stats tally.Scope) Repository[W] {
	return &repository[W]{
		records: make(map[string]record[W]),
		stats:   stats,
	}
}

func (r *repository[W]) GetOrCreate(ctx context.Context, folder entity.WorkspaceFolder, create func(entity.WorkspaceFolder) (W, error)) (W, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[folder.Key()]; ok {
		return rec.value, false, nil
	}
	w, err := create(folder)
	if err != nil {
		var zero W
		return zero, false, err
	}
	r.records[folder.Key()] = record[W]{folder: folder, value: w}
	r.stats.Gauge("workspaces").Update(float64(len(r.records)))
	return w, true, nil
}

func (r *repository[W]) Get(ctx context.Context, folder entity.WorkspaceFolder) (W, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[folder.Key()]
	if !ok {
		var zero W
		return zero, &errors.WorkspaceNotFoundError{Folder: folder.Path}
	}
	return rec.value, nil
}

func (r *repository[W]) Delete(ctx context.Context, folder entity.WorkspaceFolder) (W, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[folder.Key()]
	if !ok {
		var zero W
		return zero, &errors.WorkspaceNotFoundError{Folder: folder.Path}
	}
	delete(r.records, folder.Key())
	r.stats.Gauge("workspaces").Update(float64(len(r.records)))
	return rec.value, nil
}

func (r *repository[W]) Folders(ctx context.Context) []entity.WorkspaceFolder {
	return r.filter(func(entity.WorkspaceFolder) bool { return true })
}

func (r *repository[W]) Within(ctx context.Context, folder entity.WorkspaceFolder) []entity.WorkspaceFolder {
	return r.filter(func(f entity.WorkspaceFolder) bool { return folder.Contains(f.Path) })
}

func (r *repository[W]) filter(keep func(entity.WorkspaceFolder) bool) []entity.WorkspaceFolder {
	r.mu.Lock()
	defer r.mu.Unlock()

	var folders []entity.WorkspaceFolder
	for _, rec := range r.records {
		if keep(rec.folder) {
			folders = append(folders, rec.folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Key() < folders[j].Key()
	})
	return folders
}
