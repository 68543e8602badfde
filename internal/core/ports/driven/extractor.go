package driven

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// ExtractRequest names the file to extract and its scratch space.
type ExtractRequest struct {
	// Path is the file on disk.
	Path string

	// WorkDir is an isolated directory the extractor may write into.
	WorkDir string
}

// Extractor produces content units from one file of a single format.
// Returning a *domain.ExtractionError lets the extractor choose the tag;
// any other error is tagged <format>_extractor_failed by the dispatcher.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) ([]domain.ContentUnit, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, req ExtractRequest) ([]domain.ContentUnit, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, req ExtractRequest) ([]domain.ContentUnit, error) {
	return f(ctx, req)
}

// DocumentExtractor routes any file to the right extractor. It never fails;
// every problem is reported as an error unit.
type DocumentExtractor interface {
	// ExtractDocument extracts path, stamping every unit with documentID.
	// Media is written under scratchDir; an empty scratchDir uses a
	// temporary directory that is removed afterwards.
	ExtractDocument(ctx context.Context, path, scratchDir, documentID string) []domain.ContentUnit
}
