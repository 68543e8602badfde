// Package flat provides an exact, brute-force vector index and its
// on-disk format.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index scans every stored vector on each search. Vectors are kept in one
// contiguous slice, row-major.
type Index struct {
	mu   sync.RWMutex
	dim  int
	data []float32
}

// New creates an empty index for vectors of dim entries.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Add appends vectors in order. Either all vectors are added or none.
func (x *Index) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("flat: vector %d has %d entries, want %d: %w",
				i, len(v), x.dim, domain.ErrDimensionMismatch)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	return nil
}

// Search returns the k nearest vectors by squared Euclidean distance.
// Ties keep insertion order.
func (x *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("flat: query has %d entries, want %d: %w",
			len(query), x.dim, domain.ErrDimensionMismatch)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := x.len()
	if k <= 0 || n == 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, n)
	for i := 0; i < n; i++ {
		hits[i] = driven.VectorHit{Position: i, Distance: squaredL2(query, x.data[i*x.dim:(i+1)*x.dim])}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })

	return hits[:min(k, n)], nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.len()
}

func (x *Index) len() int {
	if x.dim == 0 {
		return 0
	}
	return len(x.data) / x.dim
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dim
}

// Vector returns a copy of the vector at position i.
func (x *Index) Vector(i int) []float32 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if i < 0 || i >= x.len() {
		return nil
	}
	out := make([]float32, x.dim)
	copy(out, x.data[i*x.dim:])
	return out
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
