package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// ErrTooManyRedirects redirect chain longer than the configured hop limit
var ErrTooManyRedirects = errors.New("too many redirects")

// NetworkError connect/reset/timeout; the only kind that is retried
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError non-2xx status after redirects were followed
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

// Retryable network errors are, unless the caller gave up
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ne *NetworkError
	return errors.As(err, &ne)
}
