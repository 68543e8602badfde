package domain

import "fmt"

// Reference attributes part of an answer to a source unit.
// References are derived per query and never persisted.
type Reference struct {
	// Unit is the page or slide number.
	Unit int `json:"page"`

	// Accuracy is the share of credit in percent (0-100).
	Accuracy float64 `json:"accuracy"`

	// URL points at the source document page.
	URL string `json:"url"`
}

// PlaceholderDocumentID is used in reference URLs when no document is known.
const PlaceholderDocumentID = "unknown"

// ReferenceURL formats the fetchable URL of a document unit.
func ReferenceURL(documentID string, unit int) string {
	if documentID == "" {
		documentID = PlaceholderDocumentID
	}
	return fmt.Sprintf("/files/%s?page=%d", documentID, unit)
}

// RetrievalMode records which retrieval path produced a result.
type RetrievalMode string

// Retrieval modes.
const (
	RetrievalModeExplicit RetrievalMode = "explicit"
	RetrievalModeSemantic RetrievalMode = "semantic"
	RetrievalModeFallback RetrievalMode = "fallback"
	RetrievalModeEmpty    RetrievalMode = "empty"
)

// Exchange is one previous question and answer in a conversation.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer is the full result of one question.
type Answer struct {
	// Question is the question as asked.
	Question string `json:"question"`

	// Text is the synthesised answer.
	Text string `json:"answer"`

	// Mode is the retrieval path taken.
	Mode RetrievalMode `json:"mode"`

	// Chunks are the retrieved chunks the answer was built from.
	Chunks []Chunk `json:"chunks,omitempty"`

	// References rank the source units by contribution.
	References []Reference `json:"references"`
}

// Retrieval is the result of retrieving chunks for one question.
// Fallback is set when a degraded path was taken and says why.
type Retrieval struct {
	Mode     RetrievalMode   `json:"mode"`
	Chunks   []Chunk         `json:"chunks"`
	Fallback *RetrievalError `json:"-"`
}
