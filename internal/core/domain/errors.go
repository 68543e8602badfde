package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format with no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConflict indicates a snapshot install raced with another build.
	ErrConflict = errors.New("conflicting update")

	// ErrNoData indicates a session has no retrievable content yet.
	ErrNoData = errors.New("no data")

	// ErrLLMUnavailable indicates the chat service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrOCRUnavailable indicates no OCR engine is configured.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrTranscriberUnavailable indicates no speech-to-text service is configured.
	ErrTranscriberUnavailable = errors.New("transcriber unavailable")

	// ErrToolNotFound indicates a required external binary is missing.
	ErrToolNotFound = errors.New("external tool not found")

	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// Extraction error tags reported on error units.
const (
	TagFileNotFound        = "file_not_found"
	TagNotAFile            = "not_a_file"
	TagStatFailed          = "stat_failed"
	TagFileTooLarge        = "file_too_large"
	TagUnsupportedFileType = "unsupported_file_type"
	TagWorkDirFailed       = "workdir_failed"
	TagReadFailed          = "read_failed"
)

// ExtractorFailedTag returns the tag for a failed extractor of the given format.
func ExtractorFailedTag(f Format) string {
	return f.String() + "_extractor_failed"
}

// ExtractorUnavailableTag returns the tag for a format with no configured extractor.
func ExtractorUnavailableTag(f Format) string {
	return f.String() + "_extractor_unavailable"
}

// ExtractionError is the error half of an extraction result.
// Tag is machine readable and ends up on the error unit.
type ExtractionError struct {
	Tag    string
	Detail string
	Err    error
}

// NewExtractionError builds an ExtractionError from a tag and a cause.
func NewExtractionError(tag string, err error) *ExtractionError {
	e := &ExtractionError{Tag: tag, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// Reason returns the text stored on the error unit.
func (e *ExtractionError) Reason() string {
	if e.Detail == "" {
		return e.Tag
	}
	return e.Tag + ": " + e.Detail
}

func (e *ExtractionError) Error() string {
	return e.Reason()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RetrievalErrorKind classifies why retrieval fell back.
type RetrievalErrorKind string

// Retrieval error kinds.
const (
	RetrievalEmbedFailed         RetrievalErrorKind = "embed_failed"
	RetrievalSearchFailed        RetrievalErrorKind = "search_failed"
	RetrievalNoMatches           RetrievalErrorKind = "no_matches"
	RetrievalReferenceOutOfRange RetrievalErrorKind = "reference_out_of_range"
	RetrievalNoIndex             RetrievalErrorKind = "no_index"
)

// RetrievalError is the error half of a retrieval result.
type RetrievalError struct {
	Kind RetrievalErrorKind
	Err  error
}

func (e *RetrievalError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
