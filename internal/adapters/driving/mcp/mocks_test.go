package mcp

import (
	"context"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	answer    *domain.Answer
	retrieval domain.Retrieval
	err       error
	lastAsk   driving.AskRequest
	lastQuery string
	lastSess  string
}

func (m *mockQAService) Ask(_ context.Context, req driving.AskRequest) (*domain.Answer, error) {
	m.lastAsk = req
	return m.answer, m.err
}

func (m *mockQAService) Retrieve(_ context.Context, sessionID, question string) (domain.Retrieval, error) {
	m.lastSess = sessionID
	m.lastQuery = question
	return m.retrieval, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *driving.IngestResult
	docs    []domain.Document
	err     error
	lastReq driving.IngestRequest
}

func (m *mockIngestService) Extract(context.Context, string) []domain.ContentUnit { return nil }

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockIngestService) Rebuild(context.Context, string) (int, error) { return 0, m.err }

func (m *mockIngestService) Documents(context.Context, string) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestService) RemoveSession(context.Context, string) error { return m.err }
