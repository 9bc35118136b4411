package llm

import (
	"context"
)

// Completion is a single generation result plus its token accounting.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TotalTokens is the combined prompt and response token count.
func (c *Completion) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	ApiKey      string // Override provider credential for this call
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Generate sends a single prompt to the model and returns the response
	// with token usage. Transient upstream failures are wrapped in the
	// sentinel errors from errors.go so callers can decide to retry.
	Generate(ctx context.Context, prompt string, options ...Option) (*Completion, error)
}
