package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

// EnvConfigDir overrides the directory configuration files are loaded from.
const EnvConfigDir = "RLSD_CONFIG_DIR"

const _defaultConfigDir = "src/rlsd/config"

var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
)

type Config struct {
	provider uber_config.Provider
}

func (c Config) Get(path string) uber_config.Value {
	return c.provider.Get(path)
}

func (c Config) Name() string {
	return "config"
}

// NewConfig loads meta.yaml from the configuration directory, then every file it lists that exists.
// Later files override earlier ones and ${VAR:default} references are expanded from the environment.
func NewConfig() (uber_config.Provider, error) {
	configDir := getConfigDir()

	metaPath := filepath.Join(configDir, "meta.yaml")
	metaProvider, err := uber_config.NewYAML(
		uber_config.File(metaPath),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta configuration: %w", err)
	}

	var configFiles []string
	if err := metaProvider.Get("files").Populate(&configFiles); err != nil {
		return nil, fmt.Errorf("failed to read files list from meta.yaml: %w", err)
	}

	var validFiles []string
	for _, file := range configFiles {
		fullPath := filepath.Join(configDir, file)
		if _, err := os.Stat(fullPath); err == nil {
			validFiles = append(validFiles, fullPath)
		}
	}

	if len(validFiles) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", configDir)
	}

	var options []uber_config.YAMLOption
	for _, file := range validFiles {
		options = append(options, uber_config.File(file))
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return Config{provider: provider}, nil
}

// LoadRustConfig reads the rust key on top of entity.DefaultRustConfig and validates the result.
func LoadRustConfig(provider uber_config.Provider) (entity.RustConfig, error) {
	cfg := entity.DefaultRustConfig()
	if err := provider.Get(entity.RustConfigKey).Populate(&cfg); err != nil {
		return entity.RustConfig{}, fmt.Errorf("reading %s configuration: %w", entity.RustConfigKey, err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return entity.RustConfig{}, fmt.Errorf("invalid %s configuration: %w", entity.RustConfigKey, err)
	}
	return cfg, nil
}

// getConfigDir returns the path to the configuration directory
func getConfigDir() string {
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		return configDir
	}

	// Relative to the workspace root, which is where the binary is expected to run from.
	return _defaultConfigDir
}
