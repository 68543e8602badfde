package mcp

import (
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

// Ports are the driving ports the MCP tools call into.
type Ports struct {
	// QA answers questions and retrieves chunks.
	QA driving.QAService

	// Ingest adds documents to sessions. Optional: without it the
	// ingest and list_documents tools are not registered.
	Ingest driving.IngestService

	// DefaultSession is used when a tool call names no session.
	DefaultSession string
}

// Validate reports ErrMissingQAService when p or its QA port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
