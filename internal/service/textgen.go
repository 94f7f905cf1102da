package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memebazaar/internal/prompts"
)

// TextGenerator produces a completion for a single instruction.
type TextGenerator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// ChatCompletionGenerator calls an OpenAI-compatible chat completions endpoint.
// Gemini, OpenAI and most proxies expose this shape.
type ChatCompletionGenerator struct {
	client   *resty.Client
	model    string
	endpoint string
}

// GeneratorConfig holds configuration for the text generation client.
type GeneratorConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewChatCompletionGenerator creates a new generation client.
// Parameters:
//   - cfg: model, key, base URL and request timeout.
//
// Returns:
//   - *ChatCompletionGenerator: initialized client wrapper.
func NewChatCompletionGenerator(cfg *GeneratorConfig) *ChatCompletionGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}

	return &ChatCompletionGenerator{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends one instruction and returns the trimmed completion.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - instruction: user message sent after the shared system prompt.
//
// Returns:
//   - string: trimmed completion text.
//   - error: non-nil on transport failure, non-2xx status or empty output.
func (g *ChatCompletionGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.GeneratorSystemPrompt},
			{Role: "user", Content: instruction},
		},
		MaxTokens:   60,
		Temperature: 0.9,
	}

	var resp chatResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("generation API returned error: HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("generation API returned error: HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response (status: %d)", httpResp.StatusCode())
	}

	text := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}
