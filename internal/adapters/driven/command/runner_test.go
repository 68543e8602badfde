package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func TestRunner_Run(t *testing.T) {
	if err := CheckAvailable("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := NewRunner().Run(context.Background(), "sh", "-c", "printf hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestRunner_RunFailureIncludesStderr(t *testing.T) {
	if err := CheckAvailable("sh"); err != nil {
		t.Skip("sh not available")
	}

	_, err := NewRunner().Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestCheckAvailable_Missing(t *testing.T) {
	err := CheckAvailable("deckqa-definitely-missing-tool")

	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
	assert.Contains(t, err.Error(), "deckqa-definitely-missing-tool")
}
