// internal/llm/client.go

// Package llm is a minimal chat-completions client. The service is consumed
// as a stateless complete(messages, options) -> text call, used for intent
// classification, answer synthesis and plain conversation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"insight-agents/internal/common/config"
	"insight-agents/internal/common/logger"
)

var (
	ErrLLMCallFailed = errors.New("LLM_CALL_FAILED")
	ErrLLMTimeout    = errors.New("LLM_TIMEOUT")
	ErrNotConfigured = errors.New("LLM_NOT_CONFIGURED")
)

// Message is one chat turn sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune one completion call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

type Client struct {
	cfg    config.LLMConfig
	client *http.Client
	logger logger.Logger
}

func New(cfg config.LLMConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger: log.With(map[string]interface{}{"component": "llm"}),
	}
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request and returns the reply text.
// Transient failures get retried with exponential backoff; a context that
// expires mid-flight surfaces as ErrLLMTimeout.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrLLMTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return "", ErrLLMTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrLLMCallFailed)
	}
	defer resp.Body.Close()

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrLLMCallFailed, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrLLMCallFailed)
	}

	text := decoded.Choices[0].Message.Content

	c.logger.Debug("completion received", map[string]interface{}{
		"messageCount": len(messages),
		"replyLength":  len(text),
	})

	return text, nil
}
