package app

import (
	"fmt"
	"os"
	"path"

	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Context struct {
	Environment        string `yaml:"environment"`
	RuntimeEnvironment string `yaml:"runtimeEnvironment"`
}

const (
	// EnvLocal indicates that the service is running locally.
	EnvLocal = "local"

	// EnvDevelopment indicates that the service is running in a development environment.
	EnvDevelopment = "development"

	// Environment variables
	_envRlsdEnvironment = "RLSD_ENVIRONMENT"
)

func decorateEnvContext(env Context) Context {
	envValue := EnvLocal
	if os.Getenv(_envRlsdEnvironment) == EnvDevelopment {
		envValue = EnvDevelopment
	}

	env.Environment = envValue
	env.RuntimeEnvironment = envValue
	return env
}

// DecorateConfigParams is the set of dependencies required to decorate the config.Provider.
type DecorateConfigParams struct {
	fx.In

	Env Context
	Cfg config.Provider
	FS  fs.RlsdFS
}

// decorateConfigProvider includes any steps that modify the config.Provider before it is used, or use its data for any startup related activities.
func decorateConfigProvider(p DecorateConfigParams) (config.Provider, error) {
	cfg := p.Cfg
	if p.Env.RuntimeEnvironment == EnvDevelopment {
		var err error
		if cfg, err = withDebugLogging(cfg); err != nil {
			return nil, err
		}
	}

	// Fail at startup rather than on the first editor request.
	if _, err := core.LoadRustConfig(cfg); err != nil {
		return nil, err
	}

	combined, err := ensureLogFolder(cfg, p.FS)
	if err != nil {
		return nil, fmt.Errorf("ensuring log folder: %v", err)
	}

	return combined, nil
}

// withDebugLogging layers a debug level over the configured logging.
func withDebugLogging(cfg config.Provider) (config.Provider, error) {
	override, err := config.NewStaticProvider(map[string]interface{}{
		"logging": map[string]interface{}{
			"level":       "debug",
			"development": true,
		},
	})
	if err != nil {
		return nil, err
	}
	return config.NewProviderGroup("development", cfg, override)
}

// Ensure that all configured logging output directories exist or create if necessary.
func ensureLogFolder(cfg config.Provider, fs fs.RlsdFS) (config.Provider, error) {
	var c zap.Config
	if err := cfg.Get("logging").Populate(&c); err != nil {
		return nil, fmt.Errorf("loading logging config: %v", err)
	}

	for _, outputPath := range c.OutputPaths {
		if outputPath == "stdout" || outputPath == "stderr" {
			continue
		}
		dir := path.Dir(outputPath)
		if err := fs.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("creating logging directory: %v", err)
		}
	}

	return cfg, nil
}
