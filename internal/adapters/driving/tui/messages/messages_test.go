package messages

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func TestAnswerReceived(t *testing.T) {
	t.Run("with answer", func(t *testing.T) {
		answer := &domain.Answer{Text: "Revenue grew.", Mode: domain.RetrievalModeSemantic}
		msg := AnswerReceived{Question: "revenue?", Answer: answer}

		require.NotNil(t, msg.Answer)
		assert.Equal(t, "Revenue grew.", msg.Answer.Text)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := AnswerReceived{Question: "revenue?", Err: errors.New("invalid")}

		assert.Nil(t, msg.Answer)
		assert.EqualError(t, msg.Err, "invalid")
	})
}

func TestDocumentsLoaded(t *testing.T) {
	msg := DocumentsLoaded{Documents: []domain.Document{{Name: "deck.pptx"}}}
	assert.Len(t, msg.Documents, 1)
}

func TestMessagesAreTeaMessages(t *testing.T) {
	msgs := []tea.Msg{
		QuestionSubmitted{Question: "q"},
		AnswerReceived{},
		DocumentsLoaded{},
		MemoryCleared{},
		ErrorOccurred{Err: errors.New("x")},
		Quit{},
	}
	assert.Len(t, msgs, 6)
}
