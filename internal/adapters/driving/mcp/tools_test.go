package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

func newTestServer(t *testing.T, qa *mockQAService, ingest *mockIngestService) *Server {
	t.Helper()
	ports := &Ports{QA: qa}
	if ingest != nil {
		ports.Ingest = ingest
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and references", func(t *testing.T) {
		qa := &mockQAService{answer: &domain.Answer{
			Text:       "Revenue grew 20%.",
			Mode:       domain.RetrievalModeSemantic,
			References: []domain.Reference{{Unit: 1, Accuracy: 100, URL: "/files/deck?page=1"}},
		}}
		server := newTestServer(t, qa, nil)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What was the revenue growth?"})

		require.NoError(t, err)
		assert.Equal(t, "Revenue grew 20%.", output.Answer)
		assert.Equal(t, "semantic", output.Mode)
		assert.Equal(t, qa.answer.References, output.References)
		assert.Equal(t, DefaultSession, qa.lastAsk.SessionID)
		assert.Nil(t, qa.lastAsk.Previous)
	})

	t.Run("passes previous exchange", func(t *testing.T) {
		qa := &mockQAService{answer: &domain.Answer{}}
		server := newTestServer(t, qa, nil)

		_, _, err := server.handleAsk(ctx, nil, AskInput{
			Question:         "And hiring?",
			SessionID:        "s2",
			PreviousQuestion: "What about revenue?",
			PreviousAnswer:   "It grew.",
		})

		require.NoError(t, err)
		assert.Equal(t, "s2", qa.lastAsk.SessionID)
		require.NotNil(t, qa.lastAsk.Previous)
		assert.Equal(t, "It grew.", qa.lastAsk.Previous.Answer)
	})

	t.Run("returns error on invalid request", func(t *testing.T) {
		server := newTestServer(t, &mockQAService{err: domain.ErrInvalidInput}, nil)

		_, _, err := server.handleAsk(ctx, nil, AskInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	qa := &mockQAService{retrieval: domain.Retrieval{
		Mode: domain.RetrievalModeExplicit,
		Chunks: []domain.Chunk{
			{Text: "Team hiring plans", Metadata: domain.ChunkMetadata{Unit: 2, DocumentID: "deck"}},
			{Text: "no unit"},
		},
	}}
	server := newTestServer(t, qa, nil)

	_, output, err := server.handleRetrieve(context.Background(), nil, RetrieveInput{Question: "slide 2"})

	require.NoError(t, err)
	assert.Equal(t, "explicit", output.Mode)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, ChunkOutput{Text: "Team hiring plans", Unit: 2, DocumentID: "deck"}, output.Chunks[0])
	assert.Equal(t, 1, output.Chunks[1].Unit)
	assert.Equal(t, "slide 2", qa.lastQuery)
}

func TestServer_handleIngest(t *testing.T) {
	ingest := &mockIngestService{result: &driving.IngestResult{
		Document: domain.Document{ID: "doc-1"},
		Units:    []domain.ContentUnit{{Number: 1}, {Number: 2}},
		Chunks:   3,
		Failed:   1,
	}}
	server := newTestServer(t, &mockQAService{}, ingest)

	_, output, err := server.handleIngest(context.Background(), nil, IngestInput{Path: "/tmp/deck.pptx", SessionID: "s1"})

	require.NoError(t, err)
	assert.Equal(t, IngestOutput{DocumentID: "doc-1", Units: 2, Failed: 1, Chunks: 3}, output)
	assert.Equal(t, "s1", ingest.lastReq.SessionID)
	assert.Equal(t, "/tmp/deck.pptx", ingest.lastReq.Path)

	ingest.err = errors.New("disk full")
	_, _, err = server.handleIngest(context.Background(), nil, IngestInput{Path: "x"})
	assert.ErrorContains(t, err, "disk full")
}

func TestServer_handleListDocuments(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ingest := &mockIngestService{docs: []domain.Document{
		{ID: "doc-1", Name: "deck.pptx", FileType: domain.FileTypePPTX, Units: 12, Size: 2048, CreatedAt: created},
	}}
	server := newTestServer(t, &mockQAService{}, ingest)

	_, output, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, DocumentOutput{
		ID: "doc-1", Name: "deck.pptx", FileType: "pptx", Units: 12, Size: 2048, CreatedAt: "2026-03-01T12:00:00Z",
	}, output.Documents[0])

	ingest.docs = nil
	_, output, err = server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})
	require.NoError(t, err)
	assert.NotNil(t, output.Documents)
	assert.Zero(t, output.Count)
}
