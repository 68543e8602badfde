package driven

import "github.com/custodia-labs/deckqa/internal/core/domain"

// Sidecar is the JSON document stored next to an index file.
// Texts and Metadata are parallel arrays.
type Sidecar struct {
	Texts    []string               `json:"texts"`
	Metadata []domain.ChunkMetadata `json:"metadata"`
}

// ArtifactStore owns the on-disk layout of a session.
type ArtifactStore interface {
	// SessionDir returns the session root, creating it if needed.
	SessionDir(sessionID string) (string, error)

	// UploadPath returns where an uploaded document copy is stored.
	UploadPath(sessionID, documentID, name string) (string, error)

	// MediaDir returns the scratch directory for extraction work dirs.
	MediaDir(sessionID string) (string, error)

	// IndexPath returns the index file path.
	IndexPath(sessionID string) string

	// ChunksPath returns the sidecar path.
	ChunksPath(sessionID string) string

	// SaveUnits writes the unit artifact of one document.
	SaveUnits(sessionID, documentID string, units []domain.ContentUnit) error

	// LoadUnits reads the unit artifact of one document.
	LoadUnits(sessionID, documentID string) ([]domain.ContentUnit, error)

	// UnitDocuments lists document IDs with a unit artifact, sorted.
	UnitDocuments(sessionID string) ([]string, error)

	// WriteSidecar writes the chunk sidecar atomically.
	WriteSidecar(path string, sidecar Sidecar) error

	// ReadSidecar reads a chunk sidecar.
	ReadSidecar(path string) (Sidecar, error)

	// RemoveSession deletes every artifact of the session.
	RemoveSession(sessionID string) error
}

// IndexCodec persists vector indexes.
type IndexCodec interface {
	// Save writes the index to path.
	Save(index VectorIndex, path string) error

	// Load reads an index from path.
	Load(path string) (VectorIndex, error)

	// New returns an empty index of the given dimension.
	New(dimensions int) VectorIndex
}
