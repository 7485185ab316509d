package ai

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrServiceUnavailable marks network, auth and API failures of the external
	// text-generation service.
	ErrServiceUnavailable = errors.New("external service unavailable")
	// ErrInvalidRequest marks a request rejected locally, before any network call.
	ErrInvalidRequest = errors.New("invalid completion request")
)

// reasoningModelPrefixes name OpenAI models whose sampling temperature is fixed at 1.
var reasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// IsFixedTemperatureModel reports whether an OpenAI model rejects an explicit temperature.
func IsFixedTemperatureModel(model string) bool {
	for _, p := range reasoningModelPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// Provider sends a prompt to an LLM and returns the raw text response.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// CompletionOptions tunes a single completion call.
type CompletionOptions struct {
	Temperature *float32 // nil leaves the provider default in place
}

// WithTemperature returns options pinned to the given sampling temperature.
func WithTemperature(t float32) CompletionOptions {
	return CompletionOptions{Temperature: &t}
}
