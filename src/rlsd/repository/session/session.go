package session

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"github.com/uber/rust-lsp/src/rlsd/model"
)

// Repository is an entity-scoped repository.
type Repository interface {
	Get(context.Context, uuid.UUID) (*entity.Session, error)
	GetFromContext(ctx context.Context) (*entity.Session, error)
	// GetAll returns every session, ordered by UUID.
	GetAll(ctx context.Context) ([]*entity.Session, error)
	// GetAllWithFolder returns every session that has the folder open, ordered by UUID.
	GetAllWithFolder(ctx context.Context, folder entity.WorkspaceFolder) ([]*entity.Session, error)
	Set(context.Context, *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	SessionCount(ctx context.Context) (int, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[uuid.UUID]*model.Session
	stats    tally.Scope
}

// New returns a repository to a key-value Session data store.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[uuid.UUID]*model.Session),
		stats:    stats,
	}
}

// Get returns the Session associated with the given id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.memstore[id]
	if !ok {
		return nil, &errors.UUIDNotFoundError{UUID: id}
	}
	return mapper.ModelToSession(f)
}

// GetFromContext returns the Session associated with the given context.
func (r *repository) GetFromContext(ctx context.Context) (*entity.Session, error) {
	uuid, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}
	s, err := r.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Set sets the Session to its associated uuid.
func (r *repository) Set(ctx context.Context, f *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f == nil {
		return errors.New("can't save nil session")
	}
	r.memstore[f.UUID] = mapper.SessionToModel(f)
	r.stats.Gauge("active_connections").Update(float64(len(r.memstore)))
	return nil
}

// Delete removes the Session associated with the given id.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, id)
	r.stats.Gauge("active_connections").Update(float64(len(r.memstore)))
	return nil
}

// SessionCount returns the total count of active sessions.
func (r *repository) SessionCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.memstore), nil
}

func (r *repository) GetAll(ctx context.Context) ([]*entity.Session, error) {
	return r.filter(func(*entity.Session) bool { return true })
}

func (r *repository) GetAllWithFolder(ctx context.Context, folder entity.WorkspaceFolder) ([]*entity.Session, error) {
	return r.filter(func(s *entity.Session) bool { return s.HasFolder(folder) })
}

func (r *repository) filter(keep func(*entity.Session) bool) ([]*entity.Session, error) {
	found := make([]*entity.Session, 0)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.memstore {
		sess, err := mapper.ModelToSession(s)
		if err != nil {
			return nil, err
		}
		if keep(sess) {
			found = append(found, sess)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].UUID.String() < found[j].UUID.String()
	})

	return found, nil
}
