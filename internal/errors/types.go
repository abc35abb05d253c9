// Package errors classifies failures from external collaborators (the model
// backend and domain sources) into transient and permanent categories and
// provides bounded retry with backoff for the transient ones.
package errors

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"fmt"
)

// TransientError marks an error that can be retried.
type TransientError struct {
	Err     error
	Message string
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transient error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an error that should not be retried.
type PermanentError struct {
	Err     error
	Message string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// NewTransient wraps err as an explicitly retryable error.
func NewTransient(err error, message string) *TransientError {
	return &TransientError{Err: err, Message: message}
}

// NewPermanent wraps err as an explicitly non-retryable error.
func NewPermanent(err error, message string) *PermanentError {
	return &PermanentError{Err: err, Message: message}
}

// IsTransient reports whether err is worth retrying. Explicit markers win;
// otherwise network-level failures and retryable HTTP statuses count as
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}

	if isNetworkError(err) {
		return true
	}

	if code := httpStatusIn(err); code > 0 {
		return isTransientHTTPStatus(code)
	}

	return isSyscallError(err)
}

func isNetworkError(err error) bool {
	// Concrete types before the net.Error interface: *net.OpError satisfies
	// net.Error, and a dial/reset failure is retryable even when Timeout()
	// is false.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.IsTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"timeout",
		"deadline exceeded",
		"connection reset",
		"broken pipe",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func isSyscallError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE,
			syscall.ETIMEDOUT, syscall.ENETUNREACH, syscall.EHOSTUNREACH:
			return true
		}
	}
	return false
}

func isTransientHTTPStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// httpStatusIn extracts an HTTP status code embedded in an error message,
// e.g. "request failed: status 503".
func httpStatusIn(err error) int {
	lower := strings.ToLower(err.Error())
	for _, code := range []int{429, 500, 502, 503, 504, 400, 401, 403, 404} {
		if strings.Contains(lower, fmt.Sprintf("status %d", code)) ||
			strings.Contains(lower, fmt.Sprintf("http %d", code)) {
			return code
		}
	}
	return 0
}
