package errors

import "fmt"

// ErrDownloadDeclined reports that the user declined to download the language server.
var ErrDownloadDeclined = New("download of the language server was declined")

// FetchError indicates that an HTTP request returned a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error is an implementation of the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// BadReleaseError indicates that a release has no asset for the current platform.
type BadReleaseError struct {
	Tag   string
	Asset string
}

// Error is an implementation of the error interface.
func (e *BadReleaseError) Error() string {
	return fmt.Sprintf("release %q has no asset named %q", e.Tag, e.Asset)
}

// Retryable implements the retry classification used by Retryable.
func (e *BadReleaseError) Retryable() bool {
	return false
}
