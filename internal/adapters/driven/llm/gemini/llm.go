// Package gemini provides a chat service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	geminiembed "github.com/custodia-labs/deckqa/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure ChatService implements the interface.
var _ driven.ChatService = (*ChatService)(nil)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

const answerTemperature = 0.2

// Config holds configuration for the Gemini chat service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generative model (default: gemini-1.5-flash).
	Model string

	// Endpoint overrides the API endpoint.
	Endpoint string
}

// ChatService answers prompts with a Gemini generative model.
type ChatService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewChatService creates a Gemini chat service.
func NewChatService(ctx context.Context, cfg Config) (*ChatService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w: API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(answerTemperature)
	return &ChatService{client: client, model: model, name: cfg.Model}, nil
}

// Complete generates an answer and joins the text parts of every candidate.
func (s *ChatService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if geminiembed.IsRateLimit(err) {
			return "", fmt.Errorf("gemini: %w: %v", domain.ErrRateLimited, err)
		}
		return "", fmt.Errorf("gemini: %w", err)
	}
	answer := joinText(resp)
	if answer == "" {
		return "", fmt.Errorf("gemini: no text content returned")
	}
	return answer, nil
}

func joinText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ModelName returns the name of the chat model being used.
func (s *ChatService) ModelName() string {
	return s.name
}

// Ping runs a minimal generation.
func (s *ChatService) Ping(ctx context.Context) error {
	_, err := s.Complete(ctx, "ping")
	return err
}

// Close releases the client connection.
func (s *ChatService) Close() error {
	return s.client.Close()
}
