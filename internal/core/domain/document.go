package domain

import "time"

// Document is an uploaded file owned by a session.
// Documents are immutable once stored.
type Document struct {
	// ID is the unique identifier, used in reference URLs.
	ID string `json:"id"`

	// SessionID is the owning session.
	SessionID string `json:"session_id"`

	// Name is the original file name.
	Name string `json:"name"`

	// FileType is the document family.
	FileType FileType `json:"filetype"`

	// MIMEType is the detected content type.
	MIMEType string `json:"mime_type,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Path is where the stored copy lives.
	Path string `json:"path"`

	// Units is the number of extracted units.
	Units int `json:"units"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}
