package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agenterrors "agentone/internal/errors"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (c *flakyClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return &CompletionResponse{Content: "recovered"}, nil
}

func (c *flakyClient) Model() string { return "flaky" }

func fastRetryConfig() agenterrors.RetryConfig {
	return agenterrors.RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestRetryClientRecoversFromTransientFailure(t *testing.T) {
	inner := &flakyClient{failures: 2, err: errors.New("dial tcp: connection refused")}
	client := NewRetryClient(inner, fastRetryConfig())

	resp, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClientStopsOnPermanentError(t *testing.T) {
	cause := agenterrors.NewPermanent(errors.New("bad model name"), "")
	inner := &flakyClient{failures: 10, err: cause}
	client := NewRetryClient(inner, fastRetryConfig())

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})

	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryClientExhaustsAndSurfacesLastError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	inner := &flakyClient{failures: 10, err: cause}
	client := NewRetryClient(inner, fastRetryConfig())

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryClientModelDelegates(t *testing.T) {
	client := NewRetryClient(&flakyClient{}, fastRetryConfig())
	assert.Equal(t, "flaky", client.Model())
}
