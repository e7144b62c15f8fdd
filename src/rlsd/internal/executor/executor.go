package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/uber-go/tally"
	rlsderrors "github.com/uber/rust-lsp/src/rlsd/internal/errors"
	"github.com/uber/rust-lsp/src/rlsd/internal/fs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultTimeout bounds Exec when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Module provides a module to inject using fx.
var Module = fx.Provide(New)

// Params are inbound parameters to initialize the Executor.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	Stats  tally.Scope
	FS     fs.RlsdFS
}

// Executor spawns external tools and runs short-lived commands on their behalf,
// adding logs and metrics to each run and making callers easier to test.
type Executor interface {
	// Spawn starts a long-running process with piped stdio. It has no timeout.
	Spawn(ctx context.Context, name string, args []string, opts Options) (*Process, error)
	// Exec runs a command to completion and buffers its output.
	Exec(ctx context.Context, name string, args []string, opts Options) (Output, error)
}

// Options customize a single Spawn or Exec.
type Options struct {
	// Cwd is canonicalized to its on-disk casing before the process starts.
	Cwd string
	// Env entries are appended to the current process environment.
	Env []string
	// Timeout overrides DefaultTimeout for Exec.
	Timeout time.Duration
	// NoStderr fails a successful Exec whose stderr is not empty.
	NoStderr bool
	// KeepStdin leaves the stdin pipe of a spawned process open.
	KeepStdin bool
	// Logger receives the rendered command line before execution.
	Logger func(commandLine string)
}

// Output is the buffered result of Exec.
type Output struct {
	Stdout string
	Stderr string
}

// Option defines options to customize executorImp's behavior.
type Option func(*executorImp)

// WithLogger overrides the default noop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *executorImp) {
		e.logger = logger
	}
}

// WithStats overrides the default noop metrics scope.
func WithStats(stats tally.Scope) Option {
	return func(e *executorImp) {
		e.stats = stats
	}
}

// WithFS sets the filesystem used to canonicalize working directories.
func WithFS(f fs.RlsdFS) Option {
	return func(e *executorImp) {
		e.fs = f
	}
}

type executorImp struct {
	logger *zap.SugaredLogger
	stats  tally.Scope
	fs     fs.RlsdFS
}

// New creates an Executor from injected dependencies.
func New(p Params) Executor {
	return NewExecutor(WithLogger(p.Logger), WithStats(p.Stats), WithFS(p.FS))
}

// NewExecutor creates an Executor with a noop logger and scope unless overridden.
func NewExecutor(opts ...Option) Executor {
	e := &executorImp{
		logger: zap.NewNop().Sugar(),
		stats:  tally.NoopScope,
		fs:     fs.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats = e.stats.SubScope("executor")
	return e
}

// Spawn starts name with piped stdio.
func (e *executorImp) Spawn(ctx context.Context, name string, args []string, opts Options) (*Process, error) {
	cmd := e.command(name, args, opts)
	commandLine := CommandLine(name, args)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		e.stats.Counter("spawn_failure").Inc(1)
		return nil, &rlsderrors.ProcessError{Command: commandLine, ExitCode: -1, Err: err}
	}
	e.stats.Counter("spawn").Inc(1)

	p := &Process{
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		commandLine: commandLine,
		cmd:         cmd,
		done:        make(chan struct{}),
	}
	if !opts.KeepStdin {
		stdin.Close()
	}
	go p.wait()
	return p, nil
}

// Exec runs name to completion. The process is killed once the timeout elapses and
// a TimeoutError is returned without waiting for it to exit.
func (e *executorImp) Exec(ctx context.Context, name string, args []string, opts Options) (Output, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cmd := e.command(name, args, opts)
	commandLine := CommandLine(name, args)

	var stdoutB, stderrB bytes.Buffer
	cmd.Stdout = &stdoutB
	cmd.Stderr = &stderrB
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		e.stats.Counter("exec_failure").Inc(1)
		return Output{}, &rlsderrors.ProcessError{Command: commandLine, ExitCode: -1, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		out := Output{Stdout: stdoutB.String(), Stderr: stderrB.String()}
		if err != nil {
			e.stats.Counter("exec_failure").Inc(1)
			return out, &rlsderrors.ProcessError{
				Command:  commandLine,
				ExitCode: cmd.ProcessState.ExitCode(),
				Stdout:   out.Stdout,
				Stderr:   out.Stderr,
				Err:      err,
			}
		}
		if opts.NoStderr && out.Stderr != "" {
			e.stats.Counter("exec_failure").Inc(1)
			return out, &rlsderrors.UnexpectedStderrError{Command: commandLine, Stdout: out.Stdout, Stderr: out.Stderr}
		}
		e.stats.Counter("exec_success").Inc(1)
		return out, nil
	case <-timer.C:
		cmd.Process.Kill()
		e.stats.Counter("exec_timeout").Inc(1)
		e.logger.Warnw("Exec timed out", "command", commandLine, "timeout", timeout)
		return Output{}, &rlsderrors.TimeoutError{Command: commandLine, Timeout: timeout}
	case <-ctx.Done():
		cmd.Process.Kill()
		e.stats.Counter("exec_cancelled").Inc(1)
		return Output{}, ctx.Err()
	}
}

func (e *executorImp) command(name string, args []string, opts Options) *exec.Cmd {
	cmd := exec.Command(lookPath(name, opts.Env), args...)
	if opts.Cwd != "" {
		dir, err := e.fs.CanonicalPath(opts.Cwd)
		if err != nil {
			e.logger.Debugw("unable to canonicalize working directory", "dir", opts.Cwd, "error", err)
			dir = opts.Cwd
		}
		cmd.Dir = dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	commandLine := CommandLine(name, args)
	if opts.Logger != nil {
		opts.Logger(commandLine)
	}
	e.logger.Infow("Exec",
		"Path", name,
		"Dir", cmd.Dir,
		"Args", args,
	)
	return cmd
}

// lookPath resolves name against a PATH entry of env, which the child sees instead of the daemon's own.
// Without one, or when nothing matches, name is returned for exec to resolve.
func lookPath(name string, env []string) string {
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	for i := len(env) - 1; i >= 0; i-- {
		path, ok := strings.CutPrefix(env[i], "PATH=")
		if !ok {
			continue
		}
		for _, dir := range filepath.SplitList(path) {
			if dir == "" {
				continue
			}
			candidate := filepath.Join(dir, name)
			if runtime.GOOS == "windows" && filepath.Ext(candidate) == "" {
				candidate += ".exe"
			}
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() && (runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0) {
				return candidate
			}
		}
		return name
	}
	return name
}

// CommandLine renders name and args the way a shell user would type them.
func CommandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Process is a spawned external process.
type Process struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	commandLine string
	cmd         *exec.Cmd
	done        chan struct{}

	mu  sync.Mutex
	err error
}

// NewProcess wraps already connected pipes in a Process. It is intended for tests that
// stand in for a real child process; Kill closes done.
func NewProcess(commandLine string, stdin io.WriteCloser, stdout, stderr io.ReadCloser) *Process {
	return &Process{
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		commandLine: commandLine,
		done:        make(chan struct{}),
	}
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	if err != nil {
		exitCode := -1
		if p.cmd.ProcessState != nil {
			exitCode = p.cmd.ProcessState.ExitCode()
		}
		err = &rlsderrors.ProcessError{Command: p.commandLine, ExitCode: exitCode, Err: err}
	}
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error, if any.
func (p *Process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Alive reports whether the process has not exited yet.
func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Pid returns the operating system process id, or 0 for a process that was not started by Spawn.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Kill terminates the process. Killing an exited process is a no-op.
func (p *Process) Kill() error {
	if !p.Alive() {
		return nil
	}
	if p.cmd == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		select {
		case <-p.done:
		default:
			p.Stdin.Close()
			p.Stdout.Close()
			p.Stderr.Close()
			close(p.done)
		}
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// String returns the command line the process was started with.
func (p *Process) String() string {
	return p.commandLine
}
