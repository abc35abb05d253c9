package llm

import (
	"context"

	agenterrors "agentone/internal/errors"
	"agentone/internal/logging"
)

// retryClient wraps a Client with bounded retry on transient failures.
// Permanent failures and exhausted retries surface to the caller unchanged;
// repeated failure is never hidden.
type retryClient struct {
	inner  Client
	config agenterrors.RetryConfig
	logger logging.Logger
}

// NewRetryClient decorates inner with retry-with-backoff semantics.
func NewRetryClient(inner Client, config agenterrors.RetryConfig) Client {
	return &retryClient{
		inner:  inner,
		config: config,
		logger: logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var resp *CompletionResponse
	err := agenterrors.RetryWithLog(ctx, c.config, func(ctx context.Context) error {
		var err error
		resp, err = c.inner.Complete(ctx, req)
		return err
	}, c.logger)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *retryClient) Model() string { return c.inner.Model() }
