package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider calls the OpenAI chat completions endpoint.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates a provider targeting the OpenAI API (or any
// compatible endpoint at baseURL).
func NewOpenAIProvider(baseURL, apiKey, model string, maxTokens int, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: p.maxTokens,
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
		// temperature is omitempty on the wire; an explicit zero would be dropped.
		if req.Temperature == 0 {
			req.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: %w: no choices returned", ErrServiceUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

// wrapError separates failures of the remote service from requests the client
// library refused to send.
func (p *OpenAIProvider) wrapError(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		urlErr *url.Error
		netErr net.Error
	)
	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("openai chat completion (HTTP %d): %w: %w", apiErr.HTTPStatusCode, ErrServiceUnavailable, err)
	case errors.As(err, &reqErr):
		return fmt.Errorf("openai chat completion (HTTP %d): %w: %w", reqErr.HTTPStatusCode, ErrServiceUnavailable, err)
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("openai chat completion: %w: %w", ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("openai chat completion for model %s: %w: %w", p.model, ErrInvalidRequest, err)
	}
}
