package driven

import (
	"time"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// Snapshot is an immutable view of one session's retrievable content.
// Index position i corresponds to Chunks[i]. Snapshots are replaced
// wholesale, never modified.
type Snapshot struct {
	// SessionID is the owning session.
	SessionID string

	// Index is nil when the session has no chunks.
	Index VectorIndex

	// Chunks are aligned with the index positions.
	Chunks []domain.Chunk

	// Version increases with every install for the session.
	Version uint64

	// BuiltAt is when the artifacts were produced.
	BuiltAt time.Time
}

// Empty returns true if there is nothing to retrieve.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Chunks) == 0
}

// Texts returns the chunk texts in index order.
func (s *Snapshot) Texts() []string {
	if s == nil {
		return nil
	}
	texts := make([]string, len(s.Chunks))
	for i := range s.Chunks {
		texts[i] = s.Chunks[i].Text
	}
	return texts
}

// Metadata returns the chunk metadata in index order.
func (s *Snapshot) Metadata() []domain.ChunkMetadata {
	if s == nil {
		return nil
	}
	meta := make([]domain.ChunkMetadata, len(s.Chunks))
	for i := range s.Chunks {
		meta[i] = s.Chunks[i].Metadata
	}
	return meta
}

// SessionStore holds the current snapshot per session.
//
// Builds for one session must not overlap; callers serialise them with Lock.
// Readers never lock and always see a complete snapshot.
type SessionStore interface {
	// Get returns the current snapshot, or nil if none is installed.
	Get(sessionID string) *Snapshot

	// Install replaces the snapshot and returns the new version.
	Install(sessionID string, snap *Snapshot) uint64

	// CompareAndInstall installs only if the current version equals expected.
	// Returns domain.ErrConflict otherwise.
	CompareAndInstall(sessionID string, expected uint64, snap *Snapshot) (uint64, error)

	// Lock acquires the per-session build lock and returns its release func.
	Lock(sessionID string) func()

	// Version returns the session's current version, zero if never installed.
	Version(sessionID string) uint64

	// Delete drops the session's snapshot.
	Delete(sessionID string)

	// Sessions lists sessions with an installed snapshot.
	Sessions() []string
}
