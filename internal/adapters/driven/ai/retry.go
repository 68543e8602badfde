package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// RetryConfig configures backoff for rate-limited provider calls.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	Initial    time.Duration // Delay before the first retry
	Multiplier float64       // Growth factor between retries
}

// DefaultRetryConfig returns 3 retries starting at 500ms and doubling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		Initial:    500 * time.Millisecond,
		Multiplier: 2,
	}
}

// backoff returns the delay before the given retry (1-based).
func (c RetryConfig) backoff(retry int) time.Duration {
	delay := float64(c.Initial)
	for i := 1; i < retry; i++ {
		delay *= c.Multiplier
	}
	return time.Duration(delay)
}

// do runs fn until it succeeds, fails with something other than
// domain.ErrRateLimited, or the retries are spent.
func (c RetryConfig) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			logger.Debug("%s rate limited, retry %d/%d in %v", op, attempt, c.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%s: max retries (%d) exceeded: %w", op, c.MaxRetries, lastErr)
}

// RetryEmbedding retries rate-limited embedding calls with exponential backoff.
func RetryEmbedding(svc driven.EmbeddingService, cfg RetryConfig) driven.EmbeddingService {
	if svc == nil {
		return nil
	}
	return &retryingEmbedding{EmbeddingService: svc, cfg: cfg}
}

// RetryChat retries rate-limited chat calls with exponential backoff.
func RetryChat(svc driven.ChatService, cfg RetryConfig) driven.ChatService {
	if svc == nil {
		return nil
	}
	return &retryingChat{ChatService: svc, cfg: cfg}
}

type retryingEmbedding struct {
	driven.EmbeddingService
	cfg RetryConfig
}

func (r *retryingEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.cfg.do(ctx, "embed", func() error {
		var err error
		out, err = r.EmbeddingService.Embed(ctx, text)
		return err
	})
	return out, err
}

func (r *retryingEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.cfg.do(ctx, "embed batch", func() error {
		var err error
		out, err = r.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

type retryingChat struct {
	driven.ChatService
	cfg RetryConfig
}

func (r *retryingChat) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := r.cfg.do(ctx, "complete", func() error {
		var err error
		out, err = r.ChatService.Complete(ctx, prompt)
		return err
	})
	return out, err
}
