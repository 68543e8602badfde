// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/deckqa/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/deckqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/deckqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/deckqa/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/deckqa/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/deckqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/deckqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the AI services built from settings.
type InitResult struct {
	Embedding driven.EmbeddingService
	Chat      driven.ChatService
	Warnings  []string // Non-fatal issues; the matching service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		r.Embedding.Close()
	}
	if r.Chat != nil {
		r.Chat.Close()
	}
}

// Init builds the embedding and chat services, each wrapped with the
// configured throttle and the default retry policy. A provider that
// cannot be created is reported in Warnings and left nil, so ingestion
// and retrieval degrade to their fallbacks instead of failing.
func Init(ctx context.Context, settings domain.Settings) *InitResult {
	result := &InitResult{}

	embedding, err := CreateEmbeddingService(ctx, &settings.Embedding, settings.RequestTimeout)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embeddings disabled: %v", err))
	case embedding == nil:
		result.Warnings = append(result.Warnings, "embeddings not configured; retrieval uses the first chunks")
	default:
		result.Embedding = RetryEmbedding(
			ThrottleEmbedding(embedding, settings.Embedding.RatePerSecond), DefaultRetryConfig())
	}

	chat, err := CreateChatService(ctx, &settings.LLM, settings.RequestTimeout)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("chat disabled: %v", err))
	case chat == nil:
		result.Warnings = append(result.Warnings, "chat model not configured; answers are unavailable")
	default:
		result.Chat = RetryChat(ThrottleChat(chat, settings.LLM.RatePerSecond), DefaultRetryConfig())
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'deckqa config' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'deckqa config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateChatService creates a chat service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateChatService(ctx context.Context, settings *domain.LLMSettings) (driven.ChatService, error) {
	svc, err := CreateChatService(ctx, settings, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'deckqa config' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'deckqa config' to fix",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, timeout time.Duration) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errors.New("anthropic does not support embeddings, use ollama, openai or gemini")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Endpoint: settings.BaseURL,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateChatService creates the appropriate chat service based on settings.
// Returns nil if the provider is not configured.
func CreateChatService(ctx context.Context, settings *domain.LLMSettings, timeout time.Duration) (driven.ChatService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewChatService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewChatService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewChatService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})

	case domain.AIProviderGemini:
		return geminillm.NewChatService(ctx, geminillm.Config{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Endpoint: settings.BaseURL,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
