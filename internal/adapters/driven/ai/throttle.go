package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// throttleBurst lets a short batch through before the sustained rate applies.
const throttleBurst = 2

// ThrottleEmbedding limits outbound embedding calls to perSecond.
// A non-positive rate returns svc unchanged.
func ThrottleEmbedding(svc driven.EmbeddingService, perSecond float64) driven.EmbeddingService {
	if svc == nil || perSecond <= 0 {
		return svc
	}
	return &throttledEmbedding{EmbeddingService: svc, limiter: rate.NewLimiter(rate.Limit(perSecond), throttleBurst)}
}

// ThrottleChat limits outbound chat calls to perSecond.
// A non-positive rate returns svc unchanged.
func ThrottleChat(svc driven.ChatService, perSecond float64) driven.ChatService {
	if svc == nil || perSecond <= 0 {
		return svc
	}
	return &throttledChat{ChatService: svc, limiter: rate.NewLimiter(rate.Limit(perSecond), throttleBurst)}
}

type throttledEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

func (t *throttledEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.EmbeddingService.Embed(ctx, text)
}

func (t *throttledEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.EmbeddingService.EmbedBatch(ctx, texts)
}

type throttledChat struct {
	driven.ChatService
	limiter *rate.Limiter
}

func (t *throttledChat) Complete(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.ChatService.Complete(ctx, prompt)
}
