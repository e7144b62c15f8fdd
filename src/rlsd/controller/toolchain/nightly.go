package toolchain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/uber/rust-lsp/src/rlsd/internal/errors"
)

const (
	// MaxNightlyLookbackDays bounds how far back FindNightly looks for a complete nightly.
	MaxNightlyLookbackDays = 30

	// DefaultDistURL is the root of the Rust release channel manifests.
	DefaultDistURL = "https://static.rust-lang.org/dist"

	_nightlyDateLayout = "2006-01-02"
	_anyTarget         = "*"
)

// channelManifest is the part of channel-rust-nightly.toml needed to check component availability.
type channelManifest struct {
	Pkg     map[string]manifestPackage `toml:"pkg"`
	Renames map[string]manifestRename  `toml:"renames"`
}

type manifestPackage struct {
	Target map[string]manifestTarget `toml:"target"`
}

type manifestTarget struct {
	Available bool `toml:"available"`
}

type manifestRename struct {
	To string `toml:"to"`
}

// provides reports whether component is available for triple, or for every target.
func (m *channelManifest) provides(component string, triple string) bool {
	if rename, ok := m.Renames[component]; ok && rename.To != "" {
		component = rename.To
	}
	pkg, ok := m.Pkg[component]
	if !ok {
		return false
	}
	return pkg.Target[triple].Available || pkg.Target[_anyTarget].Available
}

func (c *controller) FindNightly(ctx context.Context, from time.Time, components []string) (string, error) {
	triple, ok := c.platform.HostTriple()
	if !ok {
		return "", &errors.ResolutionError{Tool: "nightly channel", Reason: fmt.Sprintf("no target triple for %s/%s", c.platform.GOOS, c.platform.GOARCH)}
	}

	for day := 0; day < MaxNightlyLookbackDays; day++ {
		date := from.AddDate(0, 0, -day).Format(_nightlyDateLayout)
		manifest, err := c.fetchNightlyManifest(ctx, date)
		if err != nil {
			var fe *errors.FetchError
			if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
				c.logger.Debugw("no nightly manifest", "date", date)
				continue
			}
			return "", err
		}

		complete := true
		for _, component := range components {
			if !manifest.provides(component, triple) {
				c.logger.Debugw("nightly is missing component", "date", date, "component", component)
				complete = false
				break
			}
		}
		if complete {
			c.stats.Counter("nightly_lookups").Inc(int64(day + 1))
			return "nightly-" + date, nil
		}
	}

	c.stats.Counter("nightly_lookups").Inc(MaxNightlyLookbackDays)
	return "", &errors.ResolutionError{
		Tool:   "nightly channel",
		Reason: fmt.Sprintf("no nightly in the %d days before %s provides %q", MaxNightlyLookbackDays, from.Format(_nightlyDateLayout), components),
	}
}

func (c *controller) fetchNightlyManifest(ctx context.Context, date string) (*channelManifest, error) {
	url := fmt.Sprintf("%s/%s/channel-rust-nightly.toml", c.distURL, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var manifest channelManifest
	if _, err := toml.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, &errors.ResolutionError{Tool: "nightly manifest " + date, Reason: err.Error()}
	}
	return &manifest, nil
}
