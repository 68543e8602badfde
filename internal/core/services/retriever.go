package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// newQuestionMarker separates conversation context from the question itself.
const newQuestionMarker = "New question:"

var explicitReference = regexp.MustCompile(`(?i)\b(slide|page)\s+(\d+)`)

// Retriever selects the chunks a question is answered from.
type Retriever struct {
	embedder driven.EmbeddingService
	k        int
}

// NewRetriever creates a retriever returning at most k chunks per semantic
// query. A nil embedder makes every non-explicit query fall back.
func NewRetriever(embedder driven.EmbeddingService, k int) *Retriever {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	return &Retriever{embedder: embedder, k: k}
}

// EffectiveQuestion strips conversation context, keeping the text after
// the last "New question:" marker.
func EffectiveQuestion(question string) string {
	if i := strings.LastIndex(question, newQuestionMarker); i >= 0 {
		return strings.TrimSpace(question[i+len(newQuestionMarker):])
	}
	return strings.TrimSpace(question)
}

// ExplicitUnit returns the unit number named by "slide N" or "page N".
func ExplicitUnit(question string) (int, bool) {
	m := explicitReference.FindStringSubmatch(question)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Retrieve never fails; capability errors are reported on the result and
// answered with the first chunks of the snapshot.
func (r *Retriever) Retrieve(ctx context.Context, question string, snap *driven.Snapshot) domain.Retrieval {
	if snap.Empty() {
		return domain.Retrieval{Mode: domain.RetrievalModeEmpty}
	}

	q := EffectiveQuestion(question)
	if n, ok := ExplicitUnit(q); ok {
		logger.Debug("Explicit reference to unit %d", n)
		var chunks []domain.Chunk
		for i := range snap.Chunks {
			if snap.Chunks[i].Metadata.UnitOrDefault() == n {
				chunks = append(chunks, snap.Chunks[i])
			}
		}
		if len(chunks) == 0 {
			return r.fallback(snap, &domain.RetrievalError{Kind: domain.RetrievalReferenceOutOfRange})
		}
		return domain.Retrieval{Mode: domain.RetrievalModeExplicit, Chunks: chunks}
	}

	if r.embedder == nil {
		return r.fallback(snap, &domain.RetrievalError{
			Kind: domain.RetrievalEmbedFailed,
			Err:  domain.ErrEmbeddingUnavailable,
		})
	}
	if snap.Index == nil {
		return r.fallback(snap, &domain.RetrievalError{Kind: domain.RetrievalNoIndex})
	}

	vec, err := r.embedder.Embed(ctx, q)
	if err != nil {
		return r.fallback(snap, &domain.RetrievalError{Kind: domain.RetrievalEmbedFailed, Err: err})
	}
	hits, err := snap.Index.Search(vec, r.k)
	if err != nil {
		return r.fallback(snap, &domain.RetrievalError{Kind: domain.RetrievalSearchFailed, Err: err})
	}

	seen := make(map[string]struct{}, len(hits))
	var chunks []domain.Chunk
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(snap.Chunks) {
			continue
		}
		c := snap.Chunks[hit.Position]
		if _, dup := seen[c.Text]; dup {
			continue
		}
		seen[c.Text] = struct{}{}
		chunks = append(chunks, c)
	}
	if len(chunks) == 0 {
		return r.fallback(snap, &domain.RetrievalError{Kind: domain.RetrievalNoMatches})
	}
	logger.Debug("Semantic retrieval: %d hits, %d chunks", len(hits), len(chunks))
	return domain.Retrieval{Mode: domain.RetrievalModeSemantic, Chunks: chunks}
}

func (r *Retriever) fallback(snap *driven.Snapshot, reason *domain.RetrievalError) domain.Retrieval {
	logger.Warn("Retrieval fallback: %v", reason)
	n := min(r.k, len(snap.Chunks))
	chunks := make([]domain.Chunk, n)
	copy(chunks, snap.Chunks[:n])
	return domain.Retrieval{Mode: domain.RetrievalModeFallback, Chunks: chunks, Fallback: reason}
}
