package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func TestSessionRemove_Force(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "session", "rm", "-f", "board")
	require.NoError(t, err)
	assert.Equal(t, []string{"board"}, ts.ingest.removed)
	assert.Contains(t, out, `Removed session "board"`)
	assert.NotContains(t, out, "[y/N]")
}

func TestSessionRemove_Confirmed(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "yes\n", "session", "rm", "--session", "q3")
	require.NoError(t, err)
	assert.Equal(t, []string{"q3"}, ts.ingest.removed)
	assert.Contains(t, out, `Remove session "q3" and all of its documents? [y/N]`)
}

func TestSessionRemove_Cancelled(t *testing.T) {
	for _, input := range []string{"n\n", "\n", ""} {
		ts := setupTestServices(t)

		out, err := execute(t, input, "session", "remove", "board")
		require.NoError(t, err)
		assert.Empty(t, ts.ingest.removed)
		assert.Contains(t, out, "Cancelled.")
	}
}

func TestSessionRebuild(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "session", "rebuild")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultSession}, ts.ingest.rebuilt)
	assert.Contains(t, out, `Rebuilt session "default": 7 chunks`)
}

func TestTargetSession(t *testing.T) {
	original := sessionID
	defer func() { sessionID = original }()
	sessionID = "flag"

	assert.Equal(t, "flag", targetSession(nil))
	assert.Equal(t, "arg", targetSession([]string{"arg"}))
}

func TestDocsCmd_Text(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.docs = []domain.Document{{
		ID:        "doc-1",
		Name:      "deck.pptx",
		FileType:  domain.FileTypePPTX,
		Size:      2048,
		Units:     12,
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}}

	out, err := execute(t, "", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, `Documents in session "default":`)
	assert.Contains(t, out, "  deck.pptx\n")
	assert.Contains(t, out, "ID: doc-1")
	assert.Contains(t, out, "Type: pptx, 12 units, 2.0 KB")
	assert.Contains(t, out, "Added: 2024-03-01 09:30")
}

func TestDocsCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "docs", "-s", "empty")
	require.NoError(t, err)
	assert.Contains(t, out, `No documents in session "empty".`)
}

func TestDocsCmd_YAML(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingest.docs = []domain.Document{{ID: "doc-1", Name: "deck.pptx", FileType: domain.FileTypePPTX}}

	out, err := execute(t, "", "docs", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- id: doc-1")
	assert.Contains(t, out, "name: deck.pptx")
	assert.Contains(t, out, "filetype: pptx")
	assert.NotContains(t, out, `"id"`)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSize(tt.n))
		})
	}
}
