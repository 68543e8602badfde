// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// QuestionSubmitted is sent when the user presses enter on a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the result of one question back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// DocumentsLoaded carries the session's documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// MemoryCleared is sent after the conversation memory has been reset.
type MemoryCleared struct{}

// ErrorOccurred is sent when an unexpected error happens.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
