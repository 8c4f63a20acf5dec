// Package llm provides the inference collaborator: an opaque
// system-prompt/user-input to text function over an OpenAI-compatible API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"movierag/internal/common/config"
	"movierag/internal/common/metrics"
)

var (
	ErrInferenceCallFailed = errors.New("INFERENCE_CALL_FAILED")
	ErrInferenceTimeout    = errors.New("INFERENCE_TIMEOUT")
)

// Completer is the single round-trip contract every reasoning stage consumes.
// Implementations must not stream and must not retry.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userInput string) (string, error)
}

// Client calls an OpenAI-compatible chat-completion endpoint.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a Client from config. BaseURL may point at any
// OpenAI-compatible service; the default is the OpenAI cloud.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := config.GetDuration(cfg.Timeout)
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}, nil
}

// Complete performs one chat completion with a system prompt and user input.
func (c *Client) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userInput},
		},
	})
	if err != nil {
		metrics.InferenceCalls.WithLabelValues("complete", "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", ErrInferenceTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrInferenceCallFailed, err)
	}

	if len(resp.Choices) == 0 {
		metrics.InferenceCalls.WithLabelValues("complete", "empty").Inc()
		return "", nil
	}

	metrics.InferenceCalls.WithLabelValues("complete", "ok").Inc()
	return resp.Choices[0].Message.Content, nil
}
