package entity

import (
	"fmt"
	"time"
)

// RustConfigKey is the key that contains the Rust tooling configuration.
const RustConfigKey = "rust"

// Engine selects the language server implementation used for a workspace.
type Engine string

const (
	// EngineRLS runs the Rust Language Server through rustup.
	EngineRLS Engine = "rls"
	// EngineRustAnalyzer runs a downloaded rust-analyzer binary.
	EngineRustAnalyzer Engine = "rust-analyzer"
)

// RevealOn controls which messages bring the output channel to the user's attention.
type RevealOn string

const (
	RevealOnInfo  RevealOn = "info"
	RevealOnWarn  RevealOn = "warn"
	RevealOnError RevealOn = "error"
	RevealOnNever RevealOn = "never"
)

// Reveals reports whether a message of the given severity should be shown to the user.
func (r RevealOn) Reveals(level RevealOn) bool {
	rank := map[RevealOn]int{RevealOnInfo: 0, RevealOnWarn: 1, RevealOnError: 2, RevealOnNever: 3}
	threshold, ok := rank[r]
	if !ok {
		threshold = rank[RevealOnError]
	}
	return level != RevealOnNever && rank[level] >= threshold
}

// RustConfig is the configuration surface of the supervisor.
type RustConfig struct {
	Engine                Engine        `yaml:"engine"`
	Channel               string        `yaml:"channel"`
	RLSPath               string        `yaml:"rlsPath"`
	ServerPath            string        `yaml:"serverPath"`
	RustupPath            string        `yaml:"rustupPath"`
	CargoPath             string        `yaml:"cargoPath"`
	UseWSL                bool          `yaml:"useWSL"`
	LogToFile             bool          `yaml:"logToFile"`
	UpdateOnStartup       bool          `yaml:"updateOnStartup"`
	RevealOutputChannelOn RevealOn      `yaml:"revealOutputChannelOn"`
	AutoStartRLS          bool          `yaml:"autoStartRls"`
	DisableRustup         bool          `yaml:"disableRustup"`
	Components            []string      `yaml:"components"`
	Release               ReleaseConfig `yaml:"release"`
}

// ReleaseConfig configures where the rust-analyzer binary is resolved from.
type ReleaseConfig struct {
	// Tag is the release label to install, e.g. "nightly" or "2024-01-01".
	Tag string `yaml:"tag"`
	// MovingTags are labels that are reassigned to new builds over time.
	MovingTags []string `yaml:"movingTags"`
	// URL is the releases API endpoint, with a single %s placeholder for the tag.
	URL string `yaml:"url"`
	// InstallDir is the directory the binary is installed into. Defaults to the user cache directory.
	InstallDir string `yaml:"installDir"`
	// AskBeforeDownload prompts the user before any download.
	AskBeforeDownload bool `yaml:"askBeforeDownload"`
	// PollInterval is the minimum time between remote checks of a moving tag.
	PollInterval time.Duration `yaml:"pollInterval"`
}

// IsMoving reports whether the configured tag is reassigned over time.
func (c ReleaseConfig) IsMoving() bool {
	for _, t := range c.MovingTags {
		if t == c.Tag {
			return true
		}
	}
	return false
}

// DefaultRustConfig returns the configuration used for any field left unset.
func DefaultRustConfig() RustConfig {
	return RustConfig{
		Engine:                EngineRLS,
		RustupPath:            "rustup",
		CargoPath:             "cargo",
		RevealOutputChannelOn: RevealOnError,
		AutoStartRLS:          true,
		Components:            []string{"rust-analysis", "rust-src", "rls"},
		Release: ReleaseConfig{
			Tag:          "nightly",
			MovingTags:   []string{"nightly"},
			URL:          "https://api.github.com/repos/rust-lang/rust-analyzer/releases/tags/%s",
			PollInterval: time.Hour,
		},
	}
}

// WithDefaults fills unset fields from DefaultRustConfig.
func (c RustConfig) WithDefaults() RustConfig {
	d := DefaultRustConfig()
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.RustupPath == "" {
		c.RustupPath = d.RustupPath
	}
	if c.CargoPath == "" {
		c.CargoPath = d.CargoPath
	}
	if c.RevealOutputChannelOn == "" {
		c.RevealOutputChannelOn = d.RevealOutputChannelOn
	}
	if c.Components == nil {
		c.Components = d.Components
	}
	if c.Release.Tag == "" {
		c.Release.Tag = d.Release.Tag
	}
	if c.Release.MovingTags == nil {
		c.Release.MovingTags = d.Release.MovingTags
	}
	if c.Release.URL == "" {
		c.Release.URL = d.Release.URL
	}
	if c.Release.PollInterval == 0 {
		c.Release.PollInterval = d.Release.PollInterval
	}
	return c
}

// Validate checks values that cannot be defaulted.
func (c RustConfig) Validate() error {
	switch c.Engine {
	case EngineRLS, EngineRustAnalyzer:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	switch c.RevealOutputChannelOn {
	case RevealOnInfo, RevealOnWarn, RevealOnError, RevealOnNever:
	default:
		return fmt.Errorf("unknown revealOutputChannelOn value %q", c.RevealOutputChannelOn)
	}
	return nil
}
