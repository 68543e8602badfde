package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentUnit_HasText(t *testing.T) {
	assert.True(t, NewUnit(1, "hello").HasText())
	assert.False(t, NewUnit(1, "  \n\t").HasText())
	assert.False(t, ContentUnit{Number: 1, Text: "x", Status: UnitStatusError}.HasText())
}

func TestErrorUnit(t *testing.T) {
	u := ErrorUnit("deck.pptx", TagFileNotFound)

	assert.True(t, u.IsError())
	assert.Equal(t, 1, u.Number)
	assert.Equal(t, "file_not_found", u.Error)
	assert.Empty(t, u.Text)
}

func TestContentUnit_JSONShape(t *testing.T) {
	u := ContentUnit{Number: 2, Text: "t", Status: UnitStatusOK, DocumentID: "d", FileName: "f.pdf"}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.JSONEq(t, `{"unit":2,"text":"t","status":"ok","document_id":"d","file_name":"f.pdf"}`, string(data))
}

func TestReferenceURL(t *testing.T) {
	assert.Equal(t, "/files/abc?page=3", ReferenceURL("abc", 3))
	assert.Equal(t, "/files/unknown?page=1", ReferenceURL("", 1))
}
