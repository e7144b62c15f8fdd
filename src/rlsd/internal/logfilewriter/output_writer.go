// Package logfilewriter keeps the raw output of language server sessions in a file the editor can tail.
package logfilewriter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"github.com/uber/rust-lsp/src/rlsd/internal/serverinfofile"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_fmtOutputKey = "log:%s"
	_logsDir      = "rlsd-logs"
)

// Params define the dependencies for Open.
type Params struct {
	FS             fs.RlsdFS
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
}

// Writer writes each line it receives as one timestamped log entry.
type Writer struct {
	logger *zap.SugaredLogger
}

// Open creates a log file for name under the temporary directory and publishes its path in the
// server info file under "log:<name>". The file is removed when the daemon stops.
func Open(p Params, name string) (*Writer, error) {
	dir := filepath.Join(os.TempDir(), _logsDir)
	if err := p.FS.MkdirAll(dir); err != nil {
		return nil, err
	}

	logFile, err := p.FS.TempFile(dir, name+"-*.log")
	if err != nil {
		return nil, err
	}

	if err := p.ServerInfoFile.UpdateField(fmt.Sprintf(_fmtOutputKey, name), logFile.Name()); err != nil {
		logFile.Close()
		p.FS.Remove(logFile.Name())
		return nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.DebugLevel,
	)
	logger := zap.New(core).Sugar()

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Sync()
			logFile.Close()
			return p.FS.Remove(logFile.Name())
		},
	})

	return &Writer{logger: logger}, nil
}

// Prefixed returns a Writer to the same file whose entries are tagged with name.
func (w *Writer) Prefixed(name string) *Writer {
	return &Writer{logger: w.logger.Named(name)}
}

// Write implements io.Writer. Blank lines are dropped.
func (w *Writer) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}
