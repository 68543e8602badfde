package driving

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// AskRequest is one question within a session.
type AskRequest struct {
	// SessionID selects the index to query.
	SessionID string

	// Question is the user's question.
	Question string

	// Previous is the last exchange, for follow-up questions.
	Previous *domain.Exchange
}

// QAService answers questions about ingested documents.
type QAService interface {
	// Ask retrieves, synthesises and attributes an answer.
	// It fails only for invalid requests; capability failures degrade.
	Ask(ctx context.Context, req AskRequest) (*domain.Answer, error)

	// Retrieve returns the chunks a question would be answered from.
	Retrieve(ctx context.Context, sessionID, question string) (domain.Retrieval, error)
}
