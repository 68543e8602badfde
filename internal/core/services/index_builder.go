package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// BuildResult is the outcome of one index build.
type BuildResult struct {
	// Index is nil when there was nothing to index.
	Index driven.VectorIndex

	Sidecar driven.Sidecar

	Chunks []domain.Chunk

	// Failed counts chunks whose embedding failed and were stored as zero vectors.
	Failed int
}

// IndexBuilder chunks units, embeds the chunks and persists the vector
// index next to its sidecar.
type IndexBuilder struct {
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	codec     driven.IndexCodec
	artifacts driven.ArtifactStore
}

// NewIndexBuilder creates an index builder.
// The embedder may be nil, in which case every chunk gets a zero vector.
func NewIndexBuilder(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	codec driven.IndexCodec,
	artifacts driven.ArtifactStore,
) *IndexBuilder {
	return &IndexBuilder{
		chunker:   chunker,
		embedder:  embedder,
		codec:     codec,
		artifacts: artifacts,
	}
}

// Build indexes the units of one document. Errors are returned only when
// the artifacts cannot be written.
func (b *IndexBuilder) Build(
	ctx context.Context,
	units []domain.ContentUnit,
	indexPath, chunksPath string,
	ft domain.FileType,
) (*BuildResult, error) {
	return b.build(ctx, b.chunker.ChunkUnits(units, ft), indexPath, chunksPath)
}

// BuildSession rebuilds the combined index of a session from every stored
// unit artifact. Each document keeps its own file type.
func (b *IndexBuilder) BuildSession(ctx context.Context, sessionID string) (*BuildResult, error) {
	logger.Section("Index Build")
	docs, err := b.artifacts.UnitDocuments(sessionID)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	var chunks []domain.Chunk
	for _, docID := range docs {
		units, err := b.artifacts.LoadUnits(sessionID, docID)
		if err != nil {
			logger.Warn("Skipping units of %s: %v", docID, err)
			continue
		}
		chunks = append(chunks, b.chunker.ChunkUnits(units, fileTypeOf(units))...)
	}
	logger.Debug("Session %s: %d documents, %d chunks", sessionID, len(docs), len(chunks))

	return b.build(ctx, chunks, b.artifacts.IndexPath(sessionID), b.artifacts.ChunksPath(sessionID))
}

// fileTypeOf derives the file type from the first named unit.
func fileTypeOf(units []domain.ContentUnit) domain.FileType {
	for i := range units {
		if units[i].FileName != "" {
			return domain.FormatForPath(units[i].FileName).FileType()
		}
	}
	return domain.FileTypeOther
}

func (b *IndexBuilder) build(
	ctx context.Context,
	chunks []domain.Chunk,
	indexPath, chunksPath string,
) (*BuildResult, error) {
	result := &BuildResult{Chunks: chunks}
	result.Sidecar = sidecarOf(chunks)

	if len(chunks) == 0 {
		logger.Debug("No chunks to index, writing empty sidecar")
		if err := b.artifacts.WriteSidecar(chunksPath, result.Sidecar); err != nil {
			return nil, fmt.Errorf("build index: %w", err)
		}
		if err := os.Remove(indexPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("build index: remove stale index: %w", err)
		}
		return result, nil
	}

	vectors, failed := b.embedAll(ctx, chunks)
	result.Failed = failed

	index := b.codec.New(len(vectors[0]))
	if err := index.Add(vectors...); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := b.codec.Save(index, indexPath); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := b.artifacts.WriteSidecar(chunksPath, result.Sidecar); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	result.Index = index

	logger.Info("Indexed %d chunks (%d dims, %d failed)", len(chunks), index.Dimensions(), failed)
	return result, nil
}

// embedAll returns one vector per chunk, all of the first successful
// vector's length. Failed or mismatched chunks get zero vectors and are
// counted as failed.
func (b *IndexBuilder) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, int) {
	if b.embedder == nil {
		logger.Warn("No embedding service configured; indexing zero vectors")
		return zeroVectors(len(chunks), 1), len(chunks)
	}

	done := logger.Timed("embedding")
	defer done()

	vectors := make([][]float32, len(chunks))
	dim := 0
	for i := range chunks {
		vec, err := b.embedder.Embed(ctx, chunks[i].Text)
		if err != nil || len(vec) == 0 {
			logger.Warn("Embedding chunk %d failed: %v", i, err)
			continue
		}
		if dim == 0 {
			dim = len(vec)
		}
		vectors[i] = vec
	}
	if dim == 0 {
		dim = max(b.embedder.Dimensions(), 1)
	}

	failed := 0
	for i, vec := range vectors {
		if len(vec) == dim {
			continue
		}
		if vec != nil {
			logger.Warn("Chunk %d has %d dims, expected %d; using zero vector", i, len(vec), dim)
		}
		vectors[i] = make([]float32, dim)
		failed++
	}
	return vectors, failed
}

func zeroVectors(n, dim int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
	}
	return vectors
}

// Load reads an index and its sidecar. Any missing, malformed or
// misaligned artifact yields an empty snapshot.
func (b *IndexBuilder) Load(indexPath, chunksPath string) *driven.Snapshot {
	empty := &driven.Snapshot{BuiltAt: time.Now()}

	sidecar, err := b.artifacts.ReadSidecar(chunksPath)
	if err != nil {
		logger.Debug("Sidecar unavailable: %v", err)
		return empty
	}
	if len(sidecar.Texts) != len(sidecar.Metadata) {
		logger.Warn("Sidecar %s is misaligned (%d texts, %d metadata)",
			chunksPath, len(sidecar.Texts), len(sidecar.Metadata))
		return empty
	}
	if len(sidecar.Texts) == 0 {
		return empty
	}

	index, err := b.codec.Load(indexPath)
	if err != nil {
		logger.Warn("Index %s unavailable: %v", indexPath, err)
		return empty
	}
	if index.Len() != len(sidecar.Texts) {
		logger.Warn("Index %s has %d vectors for %d chunks", indexPath, index.Len(), len(sidecar.Texts))
		return empty
	}

	chunks := make([]domain.Chunk, len(sidecar.Texts))
	for i := range chunks {
		chunks[i] = domain.Chunk{Text: sidecar.Texts[i], Metadata: sidecar.Metadata[i]}
	}
	return &driven.Snapshot{Index: index, Chunks: chunks, BuiltAt: time.Now()}
}

// LoadSession loads the persisted snapshot of a session.
func (b *IndexBuilder) LoadSession(sessionID string) *driven.Snapshot {
	snap := b.Load(b.artifacts.IndexPath(sessionID), b.artifacts.ChunksPath(sessionID))
	snap.SessionID = sessionID
	return snap
}

func sidecarOf(chunks []domain.Chunk) driven.Sidecar {
	sc := driven.Sidecar{
		Texts:    make([]string, len(chunks)),
		Metadata: make([]domain.ChunkMetadata, len(chunks)),
	}
	for i := range chunks {
		sc.Texts[i] = chunks[i].Text
		sc.Metadata[i] = chunks[i].Metadata
	}
	return sc
}
