package errors

import "fmt"

// ResolutionError indicates that an external tool returned data that is inconsistent or cannot be parsed.
// Retrying will not help, since the same tool will give the same answer.
type ResolutionError struct {
	Tool   string
	Reason string
}

// Error is an implementation of the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %s", e.Tool, e.Reason)
}

// Retryable implements the retry classification used by Retryable.
func (e *ResolutionError) Retryable() bool {
	return false
}

// ToolchainMissingError indicates that a required toolchain or component is absent and was not installed.
type ToolchainMissingError struct {
	Toolchain  string
	Components []string
}

// Error is an implementation of the error interface.
func (e *ToolchainMissingError) Error() string {
	if len(e.Components) == 0 {
		return fmt.Sprintf("toolchain %q is not installed", e.Toolchain)
	}
	return fmt.Sprintf("components %q are missing from toolchain %q", e.Components, e.Toolchain)
}

// Retryable implements the retry classification used by Retryable.
func (e *ToolchainMissingError) Retryable() bool {
	return false
}
