// Package chat relays room messages to a hosted language model.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 60 * time.Second

	SystemPrompt = "You are a helpful AI Tutor for this course."

	DisabledReply = "AI features are currently disabled (OpenAI API Key missing)."
	FailureReply  = "I'm sorry, I couldn't process that request. Please check your API Key."
)

// Completer answers a question given some course context
type Completer interface {
	Complete(ctx context.Context, query, courseContext string) string
}

// Config holds the completion API settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint
type Client struct {
	http  *resty.Client
	model string
	ready bool
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// NewClient creates a client. Without an API key every call returns DisabledReply.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &Client{
		http:  http,
		model: cfg.Model,
		ready: cfg.APIKey != "",
	}
}

// Complete returns the model's reply. Failures are logged and replaced by
// FailureReply; there is no retry.
func (c *Client) Complete(ctx context.Context, query, courseContext string) string {
	if !c.ready {
		return DisabledReply
	}

	var out completionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: SystemPrompt},
				{Role: "user", Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", courseContext, query)},
			},
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		logger.L().Error("chat completion request failed", zap.Error(err))
		return FailureReply
	}
	if resp.IsError() {
		logger.L().Error("chat completion rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 512)))
		return FailureReply
	}
	if len(out.Choices) == 0 {
		logger.L().Error("chat completion returned no choices")
		return FailureReply
	}

	return out.Choices[0].Message.Content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
