// Package serverinfofile publishes how to reach the running daemon, so that the editor can discover it.
package serverinfofile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKeyInfoFile = "serverInfoFilePath"

	// KeyPID holds the process id of the daemon. It is written when the file is created.
	KeyPID = "pid"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ServerInfoFile manages the contents of a single JSON object file read by the editor.
type ServerInfoFile interface {
	// UpdateField sets key to value and rewrites the whole file.
	UpdateField(key string, value string) error
	// Path returns the location of the file.
	Path() string
}

type module struct {
	infofile string
	fs       fs.RlsdFS
	logger   *zap.SugaredLogger

	mu           sync.Mutex
	fileContents map[string]string
}

// Params define values to be used by ServerInfoFile.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	FS        fs.RlsdFS
	Logger    *zap.SugaredLogger
}

// New creates a ServerInfoFile at the configured path. The file is removed when the daemon stops.
func New(p Params) (ServerInfoFile, error) {
	m := &module{
		fs:           p.FS,
		logger:       p.Logger,
		fileContents: map[string]string{KeyPID: strconv.Itoa(os.Getpid())},
	}
	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: m.OnStop,
	})
	return m, nil
}

func (m *module) Path() string {
	return m.infofile
}

func (m *module) OnStop(ctx context.Context) error {
	if err := m.fs.Remove(m.infofile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *module) UpdateField(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileContents[key] = value
	contents, err := json.Marshal(m.fileContents)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	if err := m.write(contents); err != nil {
		return fmt.Errorf("writing info file: %w", err)
	}
	m.logger.Infow("server info saved", "file", m.infofile, key, value)
	return nil
}

// write replaces the file in a single rename, so the editor never reads a partial object.
func (m *module) write(contents []byte) error {
	dir := filepath.Dir(m.infofile)
	if err := m.fs.MkdirAll(dir); err != nil {
		return err
	}
	tmp, err := m.fs.TempFile(dir, "."+filepath.Base(m.infofile)+"-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(contents)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = m.fs.Rename(tmp.Name(), m.infofile)
	}
	if err != nil {
		m.fs.Remove(tmp.Name())
		return err
	}
	return nil
}

func (m *module) processConfig(cfg config.Provider) error {
	if err := cfg.Get(_configKeyInfoFile).Populate(&m.infofile); err != nil {
		return fmt.Errorf("getting config field %q: %w", _configKeyInfoFile, err)
	}
	if m.infofile == "" {
		return fmt.Errorf("missing field %q in config", _configKeyInfoFile)
	}
	return nil
}
