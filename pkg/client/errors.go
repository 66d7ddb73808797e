package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRequest is returned before any request is sent when required
// request fields are missing.
var ErrInvalidRequest = errors.New("invalid request")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message == "" {
		return fmt.Sprintf("stage service %s returned %s", e.Path, status)
	}
	return fmt.Sprintf("stage service %s returned %s: %s", e.Path, status, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsAPIError reports whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
