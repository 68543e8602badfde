package ai

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding creates the embedding service and pings it.
// Unconfigured settings validate trivially.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	if svc != nil {
		svc.Close()
	}
	return nil
}

// ValidateLLM creates the chat service and pings it.
// Unconfigured settings validate trivially.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateAndValidateChatService(ctx, settings)
	if err != nil {
		return err
	}
	if svc != nil {
		svc.Close()
	}
	return nil
}
