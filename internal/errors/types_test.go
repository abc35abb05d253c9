package errors

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientExplicitMarkers(t *testing.T) {
	base := errors.New("backend hiccup")

	assert.True(t, IsTransient(NewTransient(base, "")))
	assert.False(t, IsTransient(NewPermanent(base, "")))

	// Markers win even through wrapping.
	wrapped := fmt.Errorf("call failed: %w", NewPermanent(base, ""))
	assert.False(t, IsTransient(wrapped))
}

func TestIsTransientNetworkErrors(t *testing.T) {
	// Non-timeout op errors are retryable even though Timeout() is false.
	dial := &net.OpError{Op: "dial", Err: errors.New("refused")}
	assert.False(t, dial.Timeout())
	assert.True(t, IsTransient(dial))
	assert.True(t, IsTransient(fmt.Errorf("chat request: %w", dial)))

	assert.True(t, IsTransient(&net.DNSError{Err: "lookup failed", IsTimeout: true}))
	assert.False(t, IsTransient(&net.DNSError{Err: "no such host", IsNotFound: true}))

	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(errors.New("read: connection reset by peer")))
	assert.True(t, IsTransient(syscall.ECONNREFUSED))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	assert.True(t, IsTransient(errors.New("request failed: status 503")))
	assert.True(t, IsTransient(errors.New("request failed: status 429")))
	assert.False(t, IsTransient(errors.New("request failed: status 404")))
	assert.False(t, IsTransient(errors.New("request failed: status 400")))
}

func TestIsTransientNilAndUnknown(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("validation failed")))
}

func TestErrorMessages(t *testing.T) {
	base := errors.New("root cause")

	custom := NewTransient(base, "custom message")
	assert.Equal(t, "custom message", custom.Error())
	assert.ErrorIs(t, custom, base)

	plain := NewPermanent(base, "")
	assert.Contains(t, plain.Error(), "root cause")
	assert.ErrorIs(t, plain, base)
}
