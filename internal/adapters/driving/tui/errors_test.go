package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrMissingQAService,
		ErrMissingSession,
		ErrInvalidPorts,
		ErrNoAnswer,
		ErrDocumentsUnavailable,
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		assert.True(t, strings.HasPrefix(msg, "tui: "))
		seen[msg] = true
	}
}
