package toolchain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/executor"
)

var _crateLine = regexp.MustCompile(`^(\S+) v\S+( \(.*\))?:$`)

func (c *controller) InstalledCrates(ctx context.Context) ([]string, error) {
	name, args := c.wrap(c.cfg.CargoPath, []string{"install", "--list"})
	out, err := c.executor.Exec(ctx, name, args, executor.Options{})
	if err != nil {
		return nil, fmt.Errorf("listing installed crates: %w", err)
	}

	var crates []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		// Binaries of a crate are listed indented beneath it.
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		m := _crateLine.FindStringSubmatch(line)
		if m == nil {
			return nil, &errors.ResolutionError{Tool: "cargo install --list", Reason: fmt.Sprintf("unexpected line %q", line)}
		}
		crates = append(crates, m[1])
	}
	return crates, nil
}

func (c *controller) InstallCrate(ctx context.Context, crate string) error {
	c.logger.Infow("installing crate", "crate", crate)
	name, args := c.wrap(c.cfg.CargoPath, []string{"install", crate})
	if _, err := c.executor.Exec(ctx, name, args, c.installOptions(ctx)); err != nil {
		c.stats.Counter("install_failure").Inc(1)
		return fmt.Errorf("installing crate %q: %w", crate, err)
	}
	c.stats.Counter("install_crate").Inc(1)
	return nil
}

func (c *controller) EnsureCrate(ctx context.Context, crate string) error {
	crates, err := c.InstalledCrates(ctx)
	if err != nil {
		return err
	}
	for _, installed := range crates {
		if installed == crate {
			return nil
		}
	}

	ok, err := c.prompter.Confirm(ctx, fmt.Sprintf("%s is not installed. Install it with cargo now?", crate), _actionInstall)
	if err != nil {
		return fmt.Errorf("asking to install crate: %w", err)
	}
	if !ok {
		return &errors.ToolchainMissingError{Toolchain: "cargo", Components: []string{crate}}
	}
	return c.InstallCrate(ctx, crate)
}
