package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
	"github.com/custodia-labs/deckqa/internal/logger"
	"github.com/custodia-labs/deckqa/internal/observability"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService stores uploads, extracts them and keeps the session
// index current.
type IngestService struct {
	extractor driven.DocumentExtractor
	builder   *IndexBuilder
	catalog   driven.DocumentCatalog
	artifacts driven.ArtifactStore
	sessions  driven.SessionStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractor driven.DocumentExtractor,
	builder *IndexBuilder,
	catalog driven.DocumentCatalog,
	artifacts driven.ArtifactStore,
	sessions driven.SessionStore,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		builder:   builder,
		catalog:   catalog,
		artifacts: artifacts,
		sessions:  sessions,
	}
}

// Extract runs extraction only. Scratch files are discarded.
func (s *IngestService) Extract(ctx context.Context, path string) []domain.ContentUnit {
	return s.extractor.ExtractDocument(ctx, path, "", "")
}

// Ingest stores, extracts and indexes one file.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (_ *driving.IngestResult, err error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("ingest: %w: session and path are required", domain.ErrInvalidInput)
	}
	name := filepath.Base(req.Path)

	ctx, span := observability.StartIngestSpan(ctx, req.SessionID, name)
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	logger.Section("Ingest")
	progress := func(stage driving.IngestStage, detail string) {
		logger.Debug("ingest: %s %s", stage, detail)
		if req.Progress != nil {
			req.Progress(driving.IngestProgress{Stage: stage, Document: name, Detail: detail})
		}
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ingest: %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("ingest: %s: %w: not a regular file", name, domain.ErrInvalidInput)
	}

	doc := domain.Document{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Name:      name,
		FileType:  domain.FormatForPath(name).FileType(),
		MIMEType:  mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}

	progress(driving.StageStore, doc.ID)
	doc.Path, err = s.artifacts.UploadPath(req.SessionID, doc.ID, name)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if err := copyFile(req.Path, doc.Path); err != nil {
		return nil, fmt.Errorf("ingest: store upload: %w", err)
	}

	progress(driving.StageExtract, "")
	mediaDir, err := s.artifacts.MediaDir(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	_, extractSpan := observability.StartStageSpan(ctx, "extract")
	units := s.extractor.ExtractDocument(ctx, doc.Path, mediaDir, doc.ID)
	extractSpan.End()
	for i := range units {
		units[i].FileName = name
	}
	failed := 0
	for i := range units {
		if units[i].IsError() {
			failed++
			logger.Warn("%s unit %d: %s", name, units[i].Number, units[i].Error)
		}
	}
	doc.Units = len(units)

	if err := s.artifacts.SaveUnits(req.SessionID, doc.ID, units); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if err := s.catalog.Add(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	progress(driving.StageIndex, "")
	chunks, err := s.rebuild(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	observability.RecordIngestResult(span, len(units), failed, chunks)
	progress(driving.StageDone, fmt.Sprintf("%d units, %d chunks", len(units), chunks))
	logger.Info("Ingested %s: %d units (%d failed), session index has %d chunks", name, len(units), failed, chunks)

	return &driving.IngestResult{
		Document: doc,
		Units:    units,
		Chunks:   chunks,
		Failed:   failed,
	}, nil
}

// Rebuild re-indexes the session from its stored unit artifacts.
func (s *IngestService) Rebuild(ctx context.Context, sessionID string) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, fmt.Errorf("rebuild: %w: session is required", domain.ErrInvalidInput)
	}
	n, err := s.rebuild(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("rebuild: %w", err)
	}
	return n, nil
}

// rebuild builds and installs the session snapshot under the session lock.
func (s *IngestService) rebuild(ctx context.Context, sessionID string) (int, error) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	ctx, span := observability.StartStageSpan(ctx, "index")
	defer span.End()

	expected := s.sessions.Version(sessionID)
	result, err := s.builder.BuildSession(ctx, sessionID)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	snap := &driven.Snapshot{
		SessionID: sessionID,
		Index:     result.Index,
		Chunks:    result.Chunks,
		BuiltAt:   time.Now(),
	}
	if _, err := s.sessions.CompareAndInstall(sessionID, expected, snap); err != nil {
		observability.RecordError(span, err)
		return 0, fmt.Errorf("install snapshot: %w", err)
	}
	return len(result.Chunks), nil
}

// Documents lists the session's documents.
func (s *IngestService) Documents(ctx context.Context, sessionID string) ([]domain.Document, error) {
	docs, err := s.catalog.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	return docs, nil
}

// RemoveSession discards the session's documents and derived artifacts.
func (s *IngestService) RemoveSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("remove session: %w: session is required", domain.ErrInvalidInput)
	}
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	if err := s.catalog.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	if err := s.artifacts.RemoveSession(sessionID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	s.sessions.Delete(sessionID)
	logger.Info("Removed session %s", sessionID)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
