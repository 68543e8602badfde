package driven

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// ChatService completes a single prompt with a chat model.
type ChatService interface {
	// Complete sends the prompt as one user turn and returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// AIConfigValidator checks provider settings by contacting the provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured chat provider.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
