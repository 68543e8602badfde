// Package file stores session artifacts on the local filesystem:
//
//	<root>/sessions/<session>/
//	    uploads/<document>_<name>   stored copy of each document
//	    units/<document>.json       extracted units per document
//	    media/                      extraction work dirs
//	    index.bin                   vector index
//	    chunks.json                 chunk texts and metadata
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// File names inside a session directory.
const (
	IndexFile  = "index.bin"
	ChunksFile = "chunks.json"
	uploadsDir = "uploads"
	unitsDir   = "units"
	mediaDir   = "media"
)

// ArtifactStore implements driven.ArtifactStore under a root directory.
type ArtifactStore struct {
	root string
}

// NewArtifactStore creates a store rooted at dataDir.
func NewArtifactStore(dataDir string) *ArtifactStore {
	return &ArtifactStore{root: filepath.Join(dataDir, "sessions")}
}

// Root returns the directory holding every session.
func (s *ArtifactStore) Root() string {
	return s.root
}

// validID rejects identifiers that would escape their directory.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("identifier %q: %w", id, domain.ErrInvalidInput)
	}
	return nil
}

func (s *ArtifactStore) dir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

func (s *ArtifactStore) subdir(sessionID, name string) (string, error) {
	if err := validID(sessionID); err != nil {
		return "", err
	}
	dir := filepath.Join(s.dir(sessionID), name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	return dir, nil
}

// SessionDir returns the session root, creating it if needed.
func (s *ArtifactStore) SessionDir(sessionID string) (string, error) {
	return s.subdir(sessionID, "")
}

// UploadPath returns where a document copy is stored.
func (s *ArtifactStore) UploadPath(sessionID, documentID, name string) (string, error) {
	if err := validID(documentID); err != nil {
		return "", err
	}
	dir, err := s.subdir(sessionID, uploadsDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, documentID+"_"+filepath.Base(name)), nil
}

// MediaDir returns the extraction scratch directory.
func (s *ArtifactStore) MediaDir(sessionID string) (string, error) {
	return s.subdir(sessionID, mediaDir)
}

// IndexPath returns the index file path.
func (s *ArtifactStore) IndexPath(sessionID string) string {
	return filepath.Join(s.dir(filepath.Base(sessionID)), IndexFile)
}

// ChunksPath returns the sidecar path.
func (s *ArtifactStore) ChunksPath(sessionID string) string {
	return filepath.Join(s.dir(filepath.Base(sessionID)), ChunksFile)
}

// SaveUnits writes the unit artifact of one document.
func (s *ArtifactStore) SaveUnits(sessionID, documentID string, units []domain.ContentUnit) error {
	if err := validID(documentID); err != nil {
		return err
	}
	dir, err := s.subdir(sessionID, unitsDir)
	if err != nil {
		return err
	}
	if units == nil {
		units = []domain.ContentUnit{}
	}
	return writeJSON(filepath.Join(dir, documentID+".json"), units)
}

// LoadUnits reads the unit artifact of one document.
func (s *ArtifactStore) LoadUnits(sessionID, documentID string) ([]domain.ContentUnit, error) {
	if err := validID(sessionID); err != nil {
		return nil, err
	}
	if err := validID(documentID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir(sessionID), unitsDir, documentID+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("units of %s: %w", documentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading units: %w", err)
	}
	var units []domain.ContentUnit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("decoding units of %s: %w", documentID, err)
	}
	return units, nil
}

// UnitDocuments lists document IDs with a unit artifact, sorted.
func (s *ArtifactStore) UnitDocuments(sessionID string) ([]string, error) {
	if err := validID(sessionID); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir(sessionID), unitsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// WriteSidecar writes the chunk sidecar atomically. Nil arrays are
// written as empty arrays.
func (s *ArtifactStore) WriteSidecar(path string, sidecar driven.Sidecar) error {
	if sidecar.Texts == nil {
		sidecar.Texts = []string{}
	}
	if sidecar.Metadata == nil {
		sidecar.Metadata = []domain.ChunkMetadata{}
	}
	return writeJSON(path, sidecar)
}

// ReadSidecar reads a chunk sidecar.
func (s *ArtifactStore) ReadSidecar(path string) (driven.Sidecar, error) {
	var sidecar driven.Sidecar
	data, err := os.ReadFile(path)
	if err != nil {
		return sidecar, fmt.Errorf("reading sidecar: %w", err)
	}
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return sidecar, fmt.Errorf("decoding sidecar: %w", err)
	}
	return sidecar, nil
}

// RemoveSession deletes every artifact of the session.
func (s *ArtifactStore) RemoveSession(sessionID string) error {
	if err := validID(sessionID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.dir(sessionID)); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// writeJSON writes v to path via a temp file and rename, so readers never
// see a partial file.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
