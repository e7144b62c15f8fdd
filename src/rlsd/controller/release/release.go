// Package release installs and updates the rust-analyzer binary from its published releases.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	ideclient "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"github.com/uber/rust-lsp/src/rlsd/internal/clock"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/repository/state"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey        = "release"
	_serverName     = "rust-analyzer"
	_gzipSuffix     = ".gz"
	_actionDownload = "Download"
	_executableMode = 0o755
)

// Resolver locates the language server binary, installing it when needed.
type Resolver interface {
	// Resolve returns the path of the installed binary. A moving tag is checked remotely at most once per poll interval.
	Resolve(ctx context.Context) (string, error)
	// Update checks the release endpoint now, regardless of the poll interval.
	Update(ctx context.Context) (string, error)
}

// Params are inbound parameters to initialize a new resolver.
type Params struct {
	fx.In

	Config     config.Provider
	FS         fs.RlsdFS
	State      state.Repository
	IdeGateway ideclient.Gateway
	Clock      clock.Clock
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
	HTTPClient *http.Client `optional:"true"`
}

type resolver struct {
	cfg      entity.ReleaseConfig
	fs       fs.RlsdFS
	state    state.Repository
	prompter ideclient.Prompter
	clock    clock.Clock
	http     *http.Client
	platform entity.Platform
	logger   *zap.SugaredLogger
	stats    tally.Scope

	// Serializes installs so that concurrent sessions never download twice.
	mu sync.Mutex
}

// New creates a Resolver from the release section of the rust configuration.
func New(p Params) (Resolver, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &resolver{
		cfg:      cfg.Release,
		fs:       p.FS,
		state:    p.State,
		prompter: p.IdeGateway,
		clock:    p.Clock,
		http:     httpClient,
		platform: entity.Platform{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH},
		logger:   p.Logger.With("plugin", _nameKey),
		stats:    p.Stats.SubScope(_nameKey),
	}, nil
}

// AssetName returns the name of the release asset built for platform, without compression suffix.
func AssetName(platform entity.Platform) (string, error) {
	triple, ok := platform.HostTriple()
	if !ok {
		return "", &errors.ResolutionError{Tool: _serverName + " release", Reason: fmt.Sprintf("no prebuilt binary for %s/%s", platform.GOOS, platform.GOARCH)}
	}
	return _serverName + "-" + triple + platform.ExecutableSuffix(), nil
}

func (r *resolver) Resolve(ctx context.Context) (string, error) {
	return r.resolve(ctx, false)
}

func (r *resolver) Update(ctx context.Context) (string, error) {
	return r.resolve(ctx, true)
}

func (r *resolver) resolve(ctx context.Context, force bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, err := AssetName(r.platform)
	if err != nil {
		return "", err
	}
	path, err := r.installPath(asset)
	if err != nil {
		return "", err
	}

	installed, hasRelease, err := r.state.InstalledRelease(ctx)
	if err != nil {
		return "", fmt.Errorf("reading installed release: %w", err)
	}
	exists, err := r.fs.FileExists(path)
	if err != nil {
		return "", fmt.Errorf("checking installed binary: %w", err)
	}
	current := hasRelease && exists && installed.Tag == r.cfg.Tag

	if current && !force {
		skip, err := r.skipCheck(ctx)
		if err != nil {
			return "", err
		}
		if skip {
			return path, nil
		}
	}

	r.stats.Counter("check").Inc(1)
	metadata, err := r.fetchMetadata(ctx)
	if err != nil {
		return "", err
	}
	if err := r.state.SetLastCheck(ctx, r.clock.Now()); err != nil {
		return "", fmt.Errorf("recording release check: %w", err)
	}
	if current && installed.ID == metadata.ID {
		r.logger.Infow("language server is up to date", "tag", r.cfg.Tag, "id", installed.ID)
		r.stats.Counter("up_to_date").Inc(1)
		return path, nil
	}

	download, ok := metadata.Asset(asset)
	if !ok {
		if download, ok = metadata.Asset(asset + _gzipSuffix); !ok {
			return "", &errors.BadReleaseError{Tag: r.cfg.Tag, Asset: asset}
		}
	}

	if r.cfg.AskBeforeDownload {
		accepted, err := r.prompter.Confirm(ctx, fmt.Sprintf("Download %s %s (%s)?", _serverName, r.cfg.Tag, metadata.Name), _actionDownload)
		if err != nil {
			return "", fmt.Errorf("asking to download: %w", err)
		}
		if !accepted {
			if exists {
				r.logger.Infow("update declined, keeping installed binary", "path", path)
				return path, nil
			}
			return "", errors.ErrDownloadDeclined
		}
	}

	if err := r.download(ctx, download, path); err != nil {
		r.stats.Counter("download_failure").Inc(1)
		return "", err
	}
	r.stats.Counter("download").Inc(1)

	release := entity.Release{ID: metadata.ID, Tag: r.cfg.Tag}
	if err := r.state.SetInstalledRelease(ctx, release); err != nil {
		return "", fmt.Errorf("recording installed release: %w", err)
	}
	r.logger.Infow("installed language server", "path", path, "tag", release.Tag, "id", release.ID)
	return path, nil
}

// skipCheck reports whether the installed binary may be used without asking the release endpoint.
// A pinned tag never changes; a moving tag is rechecked once the poll interval elapsed.
func (r *resolver) skipCheck(ctx context.Context) (bool, error) {
	if !r.cfg.IsMoving() {
		return true, nil
	}
	last, err := r.state.LastCheck(ctx)
	if err != nil {
		return false, fmt.Errorf("reading last release check: %w", err)
	}
	return r.clock.Now().Sub(last) < r.cfg.PollInterval, nil
}

func (r *resolver) installPath(asset string) (string, error) {
	dir := r.cfg.InstallDir
	if dir == "" {
		cacheDir, err := r.fs.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("locating install directory: %w", err)
		}
		dir = filepath.Join(cacheDir, "rlsd", "bin")
	}
	return filepath.Join(dir, asset), nil
}

func (r *resolver) fetchMetadata(ctx context.Context) (*entity.ReleaseMetadata, error) {
	url := fmt.Sprintf(r.cfg.URL, r.cfg.Tag)
	resp, err := r.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var metadata entity.ReleaseMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, &errors.ResolutionError{Tool: _serverName + " release " + r.cfg.Tag, Reason: err.Error()}
	}
	return &metadata, nil
}

// download writes the asset to a temporary file next to path and renames it into place,
// so that path never holds a partial binary.
func (r *resolver) download(ctx context.Context, asset entity.ReleaseAsset, path string) (err error) {
	dir := filepath.Dir(path)
	if err := r.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating install directory: %w", err)
	}

	tmp, err := r.fs.TempFile(dir, "."+_serverName+"-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := r.fs.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
				r.logger.Warnw("removing partial download", "path", tmp.Name(), "error", rmErr)
			}
		}
	}()

	r.logger.Infow("downloading language server", "url", asset.BrowserDownloadURL, "path", path)
	resp, err := r.get(ctx, asset.BrowserDownloadURL, "application/octet-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if strings.HasSuffix(asset.Name, _gzipSuffix) {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("decompressing %s: %w", asset.Name, err)
		}
		defer gz.Close()
		body = gz
	}

	if _, err := io.Copy(tmp, body); err != nil {
		return fmt.Errorf("writing %s: %w", asset.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", asset.Name, err)
	}
	if err := r.fs.Chmod(tmp.Name(), _executableMode); err != nil {
		return fmt.Errorf("making %s executable: %w", asset.Name, err)
	}
	if err := r.fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("installing %s: %w", asset.Name, err)
	}
	return nil
}

func (r *resolver) get(ctx context.Context, url string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &errors.FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}
