package domain

import "strings"

// UnitStatus is the outcome of extracting one unit.
type UnitStatus string

// Unit statuses.
const (
	UnitStatusOK    UnitStatus = "ok"
	UnitStatusError UnitStatus = "error"
)

// ContentUnit is one logical page, slide or frame of a document.
// Units are produced once per extraction pass and never patched; a new
// extraction supersedes the old units wholesale.
type ContentUnit struct {
	// Number is the 1-based page/slide/frame number.
	Number int `json:"unit"`

	// Text is the extracted text.
	Text string `json:"text"`

	// Status is ok or error.
	Status UnitStatus `json:"status"`

	// Error is a machine-readable tag, set when Status is error.
	Error string `json:"error,omitempty"`

	// DocumentID identifies the source document.
	DocumentID string `json:"document_id,omitempty"`

	// FileName is the original file name.
	FileName string `json:"file_name,omitempty"`
}

// NewUnit returns an ok unit with the given number and text.
func NewUnit(number int, text string) ContentUnit {
	return ContentUnit{Number: number, Text: text, Status: UnitStatusOK}
}

// ErrorUnit returns the single error record reported for a failed file.
func ErrorUnit(fileName, reason string) ContentUnit {
	return ContentUnit{
		Number:   1,
		Status:   UnitStatusError,
		Error:    reason,
		FileName: fileName,
	}
}

// IsError returns true if extraction of this unit failed.
func (u ContentUnit) IsError() bool {
	return u.Status == UnitStatusError
}

// HasText returns true if the unit is ok and carries non-blank text.
func (u ContentUnit) HasText() bool {
	return !u.IsError() && strings.TrimSpace(u.Text) != ""
}
