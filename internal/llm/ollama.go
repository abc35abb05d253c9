package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentone/internal/logging"
)

var _ Client = (*ollamaClient)(nil)

// ollamaClient implements chat completions against a local Ollama server.
type ollamaClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// Config holds connection settings for the Ollama backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewOllamaClient creates a client for the given model. An empty base URL
// targets the default local Ollama endpoint.
func NewOllamaClient(model string, config Config) Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	if !strings.HasSuffix(baseURL, "/api") {
		baseURL = baseURL + "/api"
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ollamaClient{
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logging.NewComponentLogger("ollama-client"),
	}
}

func (c *ollamaClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	payload, err := c.buildRequestPayload(req)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/chat", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", response.Error)
	}

	stopReason := strings.TrimSpace(response.DoneReason)
	if stopReason == "" {
		stopReason = "stop"
	}

	return &CompletionResponse{
		Content:    response.Message.Content,
		StopReason: stopReason,
		Usage: TokenUsage{
			PromptTokens:     response.PromptEvalCount,
			CompletionTokens: response.EvalCount,
			TotalTokens:      response.PromptEvalCount + response.EvalCount,
		},
		Metadata: map[string]any{
			"model":          response.Model,
			"total_duration": response.TotalDuration,
		},
	}, nil
}

func (c *ollamaClient) Model() string { return c.model }

func (c *ollamaClient) buildRequestPayload(req CompletionRequest) ([]byte, error) {
	request := ollamaRequest{
		Model:    c.model,
		Messages: req.messages(),
		Stream:   false,
	}

	options := make(map[string]any)
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(options) > 0 {
		request.Options = options
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}
	return body, nil
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	DoneReason      string  `json:"done_reason"`
	TotalDuration   int64   `json:"total_duration"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
	Error           string  `json:"error"`
}
