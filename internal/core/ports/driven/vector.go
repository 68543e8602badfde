package driven

// VectorIndex is an exact nearest neighbour index over fixed-dimension vectors.
// Positions are assigned in insertion order and never change.
type VectorIndex interface {
	// Add appends vectors; each must have Dimensions() entries.
	Add(vectors ...[]float32) error

	// Search returns up to k hits ordered by ascending distance.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a nearest neighbour search result.
type VectorHit struct {
	// Position is the insertion index of the matched vector.
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}
