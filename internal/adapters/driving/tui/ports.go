// Package tui provides an interactive chat interface for deckqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports the chat TUI uses.
type Ports struct {
	// QA answers questions.
	QA driving.QAService

	// Ingest lists session documents. Optional.
	Ingest driving.IngestService

	// SessionID selects the session the chat runs against.
	SessionID string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.QA == nil {
		return ErrMissingQAService
	}
	if strings.TrimSpace(p.SessionID) == "" {
		return ErrMissingSession
	}
	return nil
}
