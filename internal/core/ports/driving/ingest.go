package driving

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// IngestStage names a step of the ingestion pipeline.
type IngestStage string

// Ingestion stages, in order.
const (
	StageStore   IngestStage = "store"
	StageExtract IngestStage = "extract"
	StageIndex   IngestStage = "index"
	StageDone    IngestStage = "done"
)

// IngestProgress reports pipeline progress to the caller.
type IngestProgress struct {
	Stage    IngestStage
	Document string
	Detail   string
}

// IngestRequest asks for one file to be added to a session.
type IngestRequest struct {
	// SessionID is the target session.
	SessionID string

	// Path is the file to ingest.
	Path string

	// Progress, if set, is called at every stage.
	Progress func(IngestProgress)
}

// IngestResult summarises one ingestion.
type IngestResult struct {
	// Document is the stored document record.
	Document domain.Document

	// Units are the extracted units, error units included.
	Units []domain.ContentUnit

	// Chunks is the size of the rebuilt session index.
	Chunks int

	// Failed counts error units.
	Failed int
}

// IngestService turns files into retrievable session content.
type IngestService interface {
	// Extract runs extraction only, without storing anything.
	Extract(ctx context.Context, path string) []domain.ContentUnit

	// Ingest stores, extracts and indexes one file, then installs the
	// rebuilt session snapshot.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Rebuild re-indexes every stored unit artifact of the session.
	Rebuild(ctx context.Context, sessionID string) (int, error)

	// Documents lists the session's documents.
	Documents(ctx context.Context, sessionID string) ([]domain.Document, error)

	// RemoveSession discards the session's documents and derived artifacts.
	RemoveSession(ctx context.Context, sessionID string) error
}
