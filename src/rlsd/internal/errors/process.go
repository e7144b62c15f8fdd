package errors

import (
	"fmt"
	"strings"
	"time"
)

// ProcessError indicates that an external command exited with a non-zero status.
type ProcessError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Error is an implementation of the error interface.
func (e *ProcessError) Error() string {
	if e.ExitCode < 0 && e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates that an external command did not finish before its deadline and was killed.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

// Error is an implementation of the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Command, e.Timeout)
}

// UnexpectedStderrError indicates that a command which must stay silent on stderr wrote to it.
type UnexpectedStderrError struct {
	Command string
	Stdout  string
	Stderr  string
}

// Error is an implementation of the error interface.
func (e *UnexpectedStderrError) Error() string {
	return fmt.Sprintf("%s wrote to stderr: %s (stdout: %s)", e.Command, strings.TrimSpace(e.Stderr), strings.TrimSpace(e.Stdout))
}
