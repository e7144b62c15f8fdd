package errors

import (
	stderr "errors"
)

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderr.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderr.As(err, target)
}

var (
	// NoUUIDOnWireError reports that the request is missing a UUID.
	NoUUIDOnWireError = New("UUID is required")
	// NoMessageOnWireError reports that the request is missing a message.
	NoMessageOnWireError = New("no message on wire")
	// ErrDisposed reports use of a factory after it was disposed.
	ErrDisposed = New("factory has been disposed")
)

// IsBadRequest reports whether the error is a bad request from the caller.
func IsBadRequest(e error) bool {
	return stderr.Is(e, NoUUIDOnWireError) || stderr.Is(e, NoMessageOnWireError)
}

// Retryable reports whether an operation that failed with err may succeed if attempted again.
// Errors that describe an inconsistent response from an external tool are never retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var r interface{ Retryable() bool }
	if stderr.As(err, &r) {
		return r.Retryable()
	}
	return true
}
