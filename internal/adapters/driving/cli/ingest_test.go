package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func TestIngestCmd_PrintsProgressAndResult(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "ingest", "--session", "board", "deck.pptx")
	require.NoError(t, err)

	require.Len(t, ts.ingest.requests, 1)
	assert.Equal(t, "board", ts.ingest.requests[0].SessionID)
	assert.Equal(t, "deck.pptx", ts.ingest.requests[0].Path)

	assert.Contains(t, out, "store    deck.pptx")
	assert.Contains(t, out, "extract  deck.pptx")
	assert.NotContains(t, out, "done")
	assert.Contains(t, out, `Ingested deck.pptx (pptx) into session "board"`)
	assert.Contains(t, out, "Document ID: doc-1")
	assert.Contains(t, out, "Units: 2 (1 failed)")
	assert.Contains(t, out, "unit 2: ocr_failed")
	assert.Contains(t, out, "Session index: 3 chunks")
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.ingestErr = errors.New("boom")

	out, err := execute(t, "", "ingest", "a.pdf", "b.pdf")
	require.Error(t, err)
	assert.Equal(t, "2 of 2 files failed to ingest", err.Error())
	assert.Contains(t, out, "Failed to ingest a.pdf: boom")
	assert.Contains(t, out, "Failed to ingest b.pdf: boom")
	assert.Len(t, ts.ingest.requests, 2)
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "ingest")
	assert.Error(t, err)
}

func TestIngestCmd_NoService(t *testing.T) {
	setupTestServices(t)
	ingestService = nil

	_, err := execute(t, "", "ingest", "a.pdf")
	assert.EqualError(t, err, "ingest service not configured")
}

func TestExtractCmd_Text(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.units = []domain.ContentUnit{
		domain.NewUnit(1, "  Quarterly results  "),
		domain.NewUnit(2, ""),
		{Number: 3, Status: domain.UnitStatusError, Error: "invalid_image"},
	}

	out, err := execute(t, "", "extract", "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "--- unit 1\nQuarterly results\n\n--- unit 2\n(no text)\n\n--- unit 3 [error: invalid_image]\n", out)
	assert.Empty(t, ts.ingest.requests)
}

func TestExtractCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.units = []domain.ContentUnit{domain.NewUnit(1, "hello")}

	out, err := execute(t, "", "extract", "-o", "json", "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, out, `"hello"`)
	assert.Contains(t, out, "[\n")
}

func TestExtractCmd_BadOutput(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "extract", "-o", "xml", "notes.txt")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}
