package driven

import "github.com/custodia-labs/deckqa/internal/core/domain"

// Chunker splits extracted units into retrieval chunks.
type Chunker interface {
	// ChunkUnits chunks every ok unit with text, tagging chunks with the
	// unit number, document and file type.
	ChunkUnits(units []domain.ContentUnit, ft domain.FileType) []domain.Chunk
}
