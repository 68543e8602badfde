package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/logger"
	"github.com/custodia-labs/deckqa/internal/textnorm"
)

// ScoringStrategy scores chunks against a question, per unit.
// ok is false when the strategy found no signal.
type ScoringStrategy interface {
	Name() string
	Score(question, answer string, chunks []domain.Chunk) (scores map[int]float64, ok bool)
}

// TokenOverlap splits one credit per distinct question token across the
// chunks containing it. The answer is used only when the question has no tokens.
type TokenOverlap struct{}

// Name implements ScoringStrategy.
func (TokenOverlap) Name() string { return "token_overlap" }

// Score implements ScoringStrategy.
func (TokenOverlap) Score(question, answer string, chunks []domain.Chunk) (map[int]float64, bool) {
	tokens := textnorm.UniqueTokens(question)
	if len(tokens) == 0 {
		tokens = textnorm.UniqueTokens(answer)
	}
	if len(tokens) == 0 {
		return nil, false
	}

	sets := make([]map[string]struct{}, len(chunks))
	for i := range chunks {
		sets[i] = textnorm.TokenSet(chunks[i].Text)
	}

	scores := make(map[int]float64)
	for _, tok := range tokens {
		var holders []int
		for i, set := range sets {
			if _, ok := set[tok]; ok {
				holders = append(holders, i)
			}
		}
		if len(holders) == 0 {
			continue
		}
		share := 1 / float64(len(holders))
		for _, i := range holders {
			scores[chunks[i].Metadata.UnitOrDefault()] += share
		}
	}
	return scores, total(scores) > 0
}

// FuzzySimilarity sums the sequence similarity of the question to each chunk.
type FuzzySimilarity struct{}

// Name implements ScoringStrategy.
func (FuzzySimilarity) Name() string { return "fuzzy_similarity" }

// Score implements ScoringStrategy.
func (FuzzySimilarity) Score(question, _ string, chunks []domain.Chunk) (map[int]float64, bool) {
	scores := make(map[int]float64)
	for i := range chunks {
		scores[chunks[i].Metadata.UnitOrDefault()] += textnorm.Ratio(question, chunks[i].Text)
	}
	return scores, total(scores) > 0
}

// Uniform credits every chunk equally.
type Uniform struct{}

// Name implements ScoringStrategy.
func (Uniform) Name() string { return "uniform" }

// Score implements ScoringStrategy.
func (Uniform) Score(_, _ string, chunks []domain.Chunk) (map[int]float64, bool) {
	scores := make(map[int]float64)
	for i := range chunks {
		scores[chunks[i].Metadata.UnitOrDefault()]++
	}
	return scores, len(scores) > 0
}

// DefaultStrategies returns the strategies in the order they are tried.
func DefaultStrategies() []ScoringStrategy {
	return []ScoringStrategy{TokenOverlap{}, FuzzySimilarity{}, Uniform{}}
}

// Attributor estimates how much each unit contributed to an answer.
type Attributor struct {
	strategies []ScoringStrategy
}

// NewAttributor creates an attributor. No strategies means the defaults.
func NewAttributor(strategies ...ScoringStrategy) *Attributor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Attributor{strategies: strategies}
}

// Attribute returns one reference per unit, highest accuracy first.
// Accuracies are percentages that sum to roughly 100.
func (a *Attributor) Attribute(question, answer string, chunks []domain.Chunk) []domain.Reference {
	if len(chunks) == 0 {
		return []domain.Reference{{Unit: 1, Accuracy: 100, URL: domain.ReferenceURL("", 1)}}
	}

	var scores map[int]float64
	for _, s := range a.strategies {
		sc, ok := s.Score(question, answer, chunks)
		if ok && total(sc) > 0 {
			logger.Debug("Attribution by %s", s.Name())
			scores = sc
			break
		}
	}
	if scores == nil {
		scores, _ = Uniform{}.Score(question, answer, chunks)
	}

	sum := total(scores)
	refs := make([]domain.Reference, 0, len(scores))
	for unit, score := range scores {
		refs = append(refs, domain.Reference{
			Unit:     unit,
			Accuracy: math.Round(score/sum*100*100) / 100,
			URL:      domain.ReferenceURL(documentFor(unit, chunks), unit),
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Accuracy != refs[j].Accuracy {
			return refs[i].Accuracy > refs[j].Accuracy
		}
		return refs[i].Unit < refs[j].Unit
	})
	return refs
}

// documentFor returns the first non-empty document ID among the unit's chunks.
func documentFor(unit int, chunks []domain.Chunk) string {
	for i := range chunks {
		if chunks[i].Metadata.UnitOrDefault() == unit && chunks[i].Metadata.DocumentID != "" {
			return chunks[i].Metadata.DocumentID
		}
	}
	return ""
}

func total(scores map[int]float64) float64 {
	var t float64
	for _, v := range scores {
		t += v
	}
	return t
}
