// Package plaintext reads text files as a single unit.
package plaintext

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text and markdown files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the file content as unit 1. Invalid UTF-8 is dropped.
func (e *Extractor) Extract(_ context.Context, req driven.ExtractRequest) ([]domain.ContentUnit, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, domain.NewExtractionError(domain.TagReadFailed, err)
	}
	return []domain.ContentUnit{domain.NewUnit(1, Decode(data))}, nil
}

// Decode converts bytes to text, dropping invalid UTF-8 sequences and a
// leading byte order mark.
func Decode(data []byte) string {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, "\uFEFF")
}
