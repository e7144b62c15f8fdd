// Package toolchain drives rustup and rustc.
package toolchain

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/uber-go/tally"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	ideclient "github.com/uber/rust-lsp/src/rlsd/gateway/ide-client"
	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey = "toolchain"

	_rustc          = "rustc"
	_wsl            = "wsl"
	_installTimeout = 10 * time.Minute
	_actionInstall  = "Install"
)

var (
	_toolchainLine = regexp.MustCompile(`^([\w.\-]+)(\s+\(.*\))?$`)
	_componentLine = regexp.MustCompile(`^[\w.\-]+$`)
	_noToolchains  = "no installed toolchains"
)

// Toolchain runs the toolchain manager and compiler on behalf of the other controllers.
type Toolchain interface {
	// Command returns the executable and arguments that run bin, through rustup when channel is set.
	Command(channel string, bin string, args ...string) (string, []string)

	ListToolchains(ctx context.Context) ([]string, error)
	HasToolchain(ctx context.Context, channel string) (bool, error)
	InstallToolchain(ctx context.Context, channel string) error
	InstalledComponents(ctx context.Context, channel string) ([]string, error)
	InstallComponents(ctx context.Context, channel string, components []string) error
	// EnsureComponents installs a missing toolchain or components after asking the user.
	// A declined prompt results in a ToolchainMissingError.
	EnsureComponents(ctx context.Context, channel string, components []string) error
	// ActiveChannel returns the toolchain rustup selects for dir.
	ActiveChannel(ctx context.Context, dir string) (string, error)

	// InstalledCrates lists the crates installed with cargo install.
	InstalledCrates(ctx context.Context) ([]string, error)
	InstallCrate(ctx context.Context, crate string) error
	// EnsureCrate installs crate with cargo after asking the user.
	EnsureCrate(ctx context.Context, crate string) error

	Sysroot(ctx context.Context, channel string) (string, error)
	Cfg(ctx context.Context, channel string) ([]string, error)

	// FindNightly returns the most recent nightly channel, no later than from, that ships every component.
	FindNightly(ctx context.Context, from time.Time, components []string) (string, error)
}

// Params are inbound parameters to initialize a new toolchain controller.
type Params struct {
	fx.In

	Config     config.Provider
	Executor   executor.Executor
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
	HTTPClient *http.Client `optional:"true"`
}

type controller struct {
	cfg      entity.RustConfig
	executor executor.Executor
	prompter ideclient.Prompter
	ideLog   ideclient.LogWriter
	http     *http.Client
	distURL  string
	platform entity.Platform
	homeDir  func() (string, error)
	logger   *zap.SugaredLogger
	stats    tally.Scope
}

// New creates a toolchain controller from the rust configuration.
func New(p Params) (Toolchain, error) {
	cfg, err := core.LoadRustConfig(p.Config)
	if err != nil {
		return nil, err
	}

	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &controller{
		cfg:      cfg,
		executor: p.Executor,
		prompter: p.IdeGateway,
		ideLog:   p.IdeGateway,
		http:     httpClient,
		distURL:  DefaultDistURL,
		platform: entity.Platform{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH},
		homeDir:  os.UserHomeDir,
		logger:   p.Logger.With("plugin", _nameKey),
		stats:    p.Stats.SubScope("toolchain"),
	}, nil
}

func (c *controller) Command(channel string, bin string, args ...string) (string, []string) {
	if channel == "" || c.cfg.DisableRustup {
		return c.wrap(bin, args)
	}
	full := make([]string, 0, len(args)+3)
	full = append(full, "run", channel, bin)
	full = append(full, args...)
	return c.wrap(c.cfg.RustupPath, full)
}

// wrap runs the command inside the default WSL distribution when configured.
func (c *controller) wrap(name string, args []string) (string, []string) {
	if !c.cfg.UseWSL {
		return name, args
	}
	return _wsl, append([]string{name}, args...)
}

func (c *controller) rustup(ctx context.Context, opts executor.Options, args ...string) (string, error) {
	name, args := c.wrap(c.cfg.RustupPath, args)
	out, err := c.executor.Exec(ctx, name, args, opts)
	if err != nil {
		return "", err
	}
	return out.Stdout, nil
}

func (c *controller) ListToolchains(ctx context.Context) ([]string, error) {
	stdout, err := c.rustup(ctx, executor.Options{}, "toolchain", "list")
	if err != nil {
		return nil, fmt.Errorf("listing toolchains: %w", err)
	}

	var toolchains []string
	for _, line := range lines(stdout) {
		if line == _noToolchains {
			return nil, nil
		}
		m := _toolchainLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &errors.ResolutionError{Tool: "rustup toolchain list", Reason: fmt.Sprintf("unexpected line %q", line)}
		}
		toolchains = append(toolchains, m[1])
	}
	return toolchains, nil
}

func (c *controller) HasToolchain(ctx context.Context, channel string) (bool, error) {
	toolchains, err := c.ListToolchains(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range toolchains {
		if t == channel || strings.HasPrefix(t, channel+"-") {
			return true, nil
		}
	}
	return false, nil
}

func (c *controller) InstallToolchain(ctx context.Context, channel string) error {
	c.logger.Infow("installing toolchain", "channel", channel)
	if _, err := c.rustup(ctx, c.installOptions(ctx), "toolchain", "install", channel); err != nil {
		c.stats.Counter("install_failure").Inc(1)
		return fmt.Errorf("installing toolchain %q: %w", channel, err)
	}
	c.stats.Counter("install_toolchain").Inc(1)
	return nil
}

// installOptions echoes install commands to the IDE output when a client is attached.
func (c *controller) installOptions(ctx context.Context) executor.Options {
	opts := executor.Options{Timeout: _installTimeout}
	w, err := c.ideLog.GetLogMessageWriter(ctx, _nameKey)
	if err != nil {
		c.logger.Debugw("not echoing install command", "error", err)
		return opts
	}
	opts.Logger = func(commandLine string) {
		fmt.Fprintf(w, "running %s\n", commandLine)
	}
	return opts
}

func (c *controller) InstalledComponents(ctx context.Context, channel string) ([]string, error) {
	stdout, err := c.rustup(ctx, executor.Options{}, "component", "list", "--installed", "--toolchain", channel)
	if err != nil {
		return nil, fmt.Errorf("listing components of %q: %w", channel, err)
	}

	var components []string
	for _, line := range lines(stdout) {
		if !_componentLine.MatchString(line) {
			return nil, &errors.ResolutionError{Tool: "rustup component list", Reason: fmt.Sprintf("unexpected line %q", line)}
		}
		components = append(components, line)
	}
	return components, nil
}

func (c *controller) InstallComponents(ctx context.Context, channel string, components []string) error {
	for _, component := range components {
		c.logger.Infow("installing component", "channel", channel, "component", component)
		if _, err := c.rustup(ctx, c.installOptions(ctx), "component", "add", component, "--toolchain", channel); err != nil {
			c.stats.Counter("install_failure").Inc(1)
			return fmt.Errorf("installing component %q: %w", component, err)
		}
		c.stats.Counter("install_component").Inc(1)
	}
	return nil
}

func (c *controller) EnsureComponents(ctx context.Context, channel string, components []string) error {
	if c.cfg.DisableRustup || channel == "" {
		return nil
	}

	has, err := c.HasToolchain(ctx, channel)
	if err != nil {
		return err
	}
	if !has {
		ok, err := c.prompter.Confirm(ctx, fmt.Sprintf("Toolchain %s is not installed. Install it now?", channel), _actionInstall)
		if err != nil {
			return fmt.Errorf("asking to install toolchain: %w", err)
		}
		if !ok {
			return &errors.ToolchainMissingError{Toolchain: channel}
		}
		if err := c.InstallToolchain(ctx, channel); err != nil {
			return err
		}
	}

	installed, err := c.InstalledComponents(ctx, channel)
	if err != nil {
		return err
	}
	missing := c.missingComponents(installed, components)
	if len(missing) == 0 {
		return nil
	}

	ok, err := c.prompter.Confirm(ctx, fmt.Sprintf("%s missing from toolchain %s. Install now?", strings.Join(missing, ", "), channel), _actionInstall)
	if err != nil {
		return fmt.Errorf("asking to install components: %w", err)
	}
	if !ok {
		return &errors.ToolchainMissingError{Toolchain: channel, Components: missing}
	}
	return c.InstallComponents(ctx, channel, missing)
}

// missingComponents compares wanted names against installed names, which carry the host triple for
// target specific components.
func (c *controller) missingComponents(installed []string, wanted []string) []string {
	triple, hasTriple := c.platform.HostTriple()
	var missing []string
	for _, w := range wanted {
		found := false
		for _, i := range installed {
			if i == w || (hasTriple && i == w+"-"+triple) || (!hasTriple && strings.HasPrefix(i, w+"-")) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	return missing
}

func (c *controller) ActiveChannel(ctx context.Context, dir string) (string, error) {
	stdout, err := c.rustup(ctx, executor.Options{Cwd: dir}, "show", "active-toolchain")
	if err != nil {
		return "", fmt.Errorf("getting active toolchain: %w", err)
	}
	out := lines(stdout)
	if len(out) == 0 {
		return "", &errors.ResolutionError{Tool: "rustup show active-toolchain", Reason: "empty output"}
	}
	m := _toolchainLine.FindStringSubmatch(out[0])
	if m == nil {
		return "", &errors.ResolutionError{Tool: "rustup show active-toolchain", Reason: fmt.Sprintf("unexpected output %q", out[0])}
	}
	return m[1], nil
}

func (c *controller) Sysroot(ctx context.Context, channel string) (string, error) {
	name, args := c.Command(channel, _rustc, "--print=sysroot")
	out, err := c.executor.Exec(ctx, name, args, executor.Options{})

	var pe *errors.ProcessError
	if errors.As(err, &pe) {
		// rustc may only be reachable through the cargo bin directory, which is not always on PATH.
		if home, herr := c.homeDir(); herr == nil {
			c.logger.Infow("retrying sysroot lookup with cargo bin directory on PATH", "error", err)
			out, err = c.executor.Exec(ctx, name, args, executor.Options{Env: []string{cargoBinPath(home)}})
		}
	}
	if err != nil {
		return "", fmt.Errorf("getting sysroot: %w", err)
	}

	sysroot := strings.TrimSpace(out.Stdout)
	if sysroot == "" {
		return "", &errors.ResolutionError{Tool: "rustc --print=sysroot", Reason: "empty output"}
	}
	return sysroot, nil
}

func (c *controller) Cfg(ctx context.Context, channel string) ([]string, error) {
	name, args := c.Command(channel, _rustc, "--print=cfg")
	out, err := c.executor.Exec(ctx, name, args, executor.Options{})
	if err != nil {
		return nil, fmt.Errorf("getting cfg: %w", err)
	}
	return lines(out.Stdout), nil
}

// cargoBinPath returns a PATH entry with the cargo bin directory of home in front.
func cargoBinPath(home string) string {
	return "PATH=" + filepath.Join(home, ".cargo", "bin") + string(os.PathListSeparator) + os.Getenv("PATH")
}

// lines returns the non-empty, trimmed lines of s.
func lines(s string) []string {
	var result []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			result = append(result, l)
		}
	}
	return result
}
