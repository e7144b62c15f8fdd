// Package state persists the small amount of data that must survive a daemon restart.
package state

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/mapper"
	"github.com/uber/rust-lsp/src/rlsd/model"
	"go.etcd.io/bbolt"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKey   = "state"
	_bucket      = "rlsd"
	_openTimeout = time.Second

	// KeyLastCheck holds the time of the last remote release check, in unix milliseconds.
	KeyLastCheck = "lastCheck"
	// KeyInstalledRelease holds the JSON encoded release that is currently installed.
	KeyInstalledRelease = "installedRelease"
)

// Config locates the state database.
type Config struct {
	// Path of the database file. Defaults to rlsd/state.db under the user cache directory.
	Path string `yaml:"path"`
}

// Repository reads and writes persisted daemon state.
type Repository interface {
	// LastCheck returns the time of the last remote release check, or the zero time if there was none.
	LastCheck(ctx context.Context) (time.Time, error)
	SetLastCheck(ctx context.Context, t time.Time) error
	// InstalledRelease returns the installed release and whether one was recorded.
	InstalledRelease(ctx context.Context) (entity.Release, bool, error)
	SetInstalledRelease(ctx context.Context, r entity.Release) error
}

// Params are inbound parameters to initialize a new state repository.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Provider
	FS        fs.RlsdFS
	Logger    *zap.SugaredLogger
}

type repository struct {
	db *bbolt.DB
}

// New opens the state database and closes it when the application stops.
func New(p Params) (Repository, error) {
	cfg := Config{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting state configuration: %w", err)
	}

	path := cfg.Path
	if path == "" {
		cacheDir, err := p.FS.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating state database: %w", err)
		}
		path = filepath.Join(cacheDir, "rlsd", "state.db")
	}
	if err := p.FS.MkdirAll(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	p.Logger.Infow("opened state database", "path", path)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})
	return r, nil
}

// Store is a Repository owning its database handle.
type Store interface {
	Repository
	io.Closer
}

// Open opens or creates the database at path. The caller must Close it.
func Open(path string) (Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: _openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state database %q: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(_bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state database: %w", err)
	}
	return &repository{db: db}, nil
}

func (r *repository) Close() error {
	return r.db.Close()
}

func (r *repository) LastCheck(ctx context.Context) (time.Time, error) {
	v, err := r.get(KeyLastCheck)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	if len(v) != 8 {
		return time.Time{}, fmt.Errorf("malformed %s value of %d bytes", KeyLastCheck, len(v))
	}
	return time.UnixMilli(int64(binary.BigEndian.Uint64(v))), nil
}

func (r *repository) SetLastCheck(ctx context.Context, t time.Time) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t.UnixMilli()))
	return r.put(KeyLastCheck, b)
}

func (r *repository) InstalledRelease(ctx context.Context) (entity.Release, bool, error) {
	v, err := r.get(KeyInstalledRelease)
	if err != nil || v == nil {
		return entity.Release{}, false, err
	}
	var m model.InstalledRelease
	if err := json.Unmarshal(v, &m); err != nil {
		return entity.Release{}, false, fmt.Errorf("decoding %s: %w", KeyInstalledRelease, err)
	}
	return mapper.ModelToRelease(m), true, nil
}

func (r *repository) SetInstalledRelease(ctx context.Context, release entity.Release) error {
	b, err := json.Marshal(mapper.ReleaseToModel(release))
	if err != nil {
		return err
	}
	return r.put(KeyInstalledRelease, b)
}

func (r *repository) get(key string) ([]byte, error) {
	var value []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(_bucket))
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid for the life of the transaction.
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (r *repository) put(key string, value []byte) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(_bucket)).Put([]byte(key), value)
	})
}
