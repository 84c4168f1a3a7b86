package epo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// APIError describes a non-success response from the OPS API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ops request %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ops request %s: status %d", e.Endpoint, e.StatusCode)
}

// Transient reports whether the failure may succeed on retry.
// Rate limiting, timeouts, and server-side errors are transient;
// other client errors are permanent.
func (e *APIError) Transient() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsTransient reports whether err represents a failure worth retrying.
// Network-level failures count as transient; context cancellation and
// permanent API errors do not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
