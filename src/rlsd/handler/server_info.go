package handler

import (
	"fmt"

	"github.com/uber/rust-lsp/src/rlsd/internal/core"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_infoKeyEngine  = "rust-engine"
	_infoKeyChannel = "rust-channel"
)

// Output the configured language server engine, so that the editor can adapt its client before connecting.
// The JSON-RPC address is added independently by the inbound once it is bound.
func outputEngineInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	rustCfg, err := core.LoadRustConfig(cfg)
	if err != nil {
		return err
	}

	if err := infofile.UpdateField(_infoKeyEngine, string(rustCfg.Engine)); err != nil {
		return fmt.Errorf("outputting %q to info file: %w", _infoKeyEngine, err)
	}

	if rustCfg.Channel == "" {
		return nil
	}
	if err := infofile.UpdateField(_infoKeyChannel, rustCfg.Channel); err != nil {
		return fmt.Errorf("outputting %q to info file: %w", _infoKeyChannel, err)
	}
	return nil
}
