// Package mcp provides an MCP (Model Context Protocol) server adapter for deckqa.
// It lets AI assistants ask questions about ingested documents and add new ones.
package mcp

import "errors"

// ErrMissingQAService is returned when the question answering service is not provided.
var ErrMissingQAService = errors.New("mcp: QA service is required")
