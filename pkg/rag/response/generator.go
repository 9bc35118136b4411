package response

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/pkg/llm"
)

const maxRetries = 2 // attempts = 1 + maxRetries

// NewBackOff returns the production retry schedule: 1s then 2s between
// attempts, no jitter so the cadence is predictable under load.
func NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 32 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Generator calls the model with retry on transient failures. Permanent
// failures surface immediately.
type Generator struct {
	provider   llm.LLMProvider
	logger     logger.ILogger
	newBackOff func() backoff.BackOff
}

func NewGenerator(provider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		provider:   provider,
		logger:     log,
		newBackOff: NewBackOff,
	}
}

// NewGeneratorWithBackOff lets tests inject a zero-delay schedule.
func NewGeneratorWithBackOff(provider llm.LLMProvider, log logger.ILogger, newBackOff func() backoff.BackOff) *Generator {
	return &Generator{
		provider:   provider,
		logger:     log,
		newBackOff: newBackOff,
	}
}

// Generate runs the completion, retrying transient provider failures up to
// two times. Exhausting the schedule classifies as upstream_transient so
// the transport layer answers 503.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), maxRetries), ctx)

	attempt := 0
	operation := func() (*llm.Completion, error) {
		attempt++
		completion, err := g.provider.Generate(ctx, prompt, opts...)
		if err == nil {
			return completion, nil
		}
		if !llm.IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		g.logger.Warn("rag.response", "transient model failure, retrying", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	completion, err := backoff.RetryNotifyWithData(operation, b, notify)
	if err != nil {
		if llm.IsTransient(err) {
			return nil, apperror.Wrap(apperror.CodeUpstreamTransient, "service temporarily unavailable", err)
		}
		return nil, apperror.Wrap(apperror.CodeUpstreamPermanent, "model request failed", err)
	}
	return completion, nil
}
