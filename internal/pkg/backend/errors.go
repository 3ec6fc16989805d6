package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

var (
	// ErrUnauthorized is returned when the backend answers 401.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrNotConfigured is returned when the client has no base URL.
	ErrNotConfigured = errors.New("backend: base_url is empty")
)

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Body    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend http error: status=%d message=%s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend http error: status=%d body=%s", e.Status, e.Body)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *HTTPError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// IsClientError reports whether the backend rejected the request (4xx).
func (e *HTTPError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// AsHTTPError extracts an *HTTPError from err.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// MessageOf returns the backend-provided message carried by err, if any.
func MessageOf(err error) string {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.Message
	}
	return ""
}

func classifyRequestError(ctx context.Context, op string, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("backend %s timeout: %w", op, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("backend %s network error: %w", op, err)
	}
	return fmt.Errorf("backend %s request error: %w", op, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
