package driven

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// DocumentCatalog records ingested documents per session.
type DocumentCatalog interface {
	// Add stores a document record.
	Add(ctx context.Context, doc domain.Document) error

	// Get returns a document by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns a session's documents, oldest first.
	List(ctx context.Context, sessionID string) ([]domain.Document, error)

	// Sessions returns the IDs of sessions with documents.
	Sessions(ctx context.Context) ([]string, error)

	// DeleteSession removes every document record of the session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases resources.
	Close() error
}
