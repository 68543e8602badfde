package tui

import "errors"

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("tui: QA service is required")

// ErrMissingSession is returned when no session is selected.
var ErrMissingSession = errors.New("tui: session is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrNoAnswer is reported when the QA service returns neither answer nor error.
var ErrNoAnswer = errors.New("tui: no answer returned")

// ErrDocumentsUnavailable is reported by /docs when no ingest service is wired.
var ErrDocumentsUnavailable = errors.New("tui: document listing is not available")
