package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

func TestSynthesize_NoChunks(t *testing.T) {
	chat := &mockChat{response: "unused"}
	s := NewSynthesizer(chat, nil, nil, 0)

	assert.Equal(t, NoDataMessage, s.Synthesize(context.Background(), "q", nil, ""))
	assert.Empty(t, chat.prompts)
}

func TestSynthesize_ChatError(t *testing.T) {
	s := NewSynthesizer(&mockChat{err: errors.New("timeout")}, nil, nil, 0)
	assert.Equal(t, ApologyMessage, s.Synthesize(context.Background(), "q", []domain.Chunk{chunk(1, "text")}, ""))
}

func TestSynthesize_NoChatService(t *testing.T) {
	s := NewSynthesizer(nil, nil, nil, 0)
	assert.Equal(t, ApologyMessage, s.Synthesize(context.Background(), "q", []domain.Chunk{chunk(1, "text")}, ""))
}

func TestSynthesize_PromptCarriesContextAndQuestion(t *testing.T) {
	chat := &mockChat{response: "  Revenue grew 20%.  "}
	s := NewSynthesizer(chat, nil, nil, 0)

	answer := s.Synthesize(context.Background(), "How did revenue change?",
		[]domain.Chunk{chunk(1, "Revenue grew 20 percent"), chunk(2, "Hiring plans")}, "")
	assert.Equal(t, "Revenue grew 20%.", answer)

	require.Len(t, chat.prompts, 1)
	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "Revenue grew 20 percent\n\nHiring plans")
	assert.Contains(t, prompt, "How did revenue change?")
	assert.Contains(t, prompt, "Answer only from the content above")
}

func TestSynthesize_ConversationReplacesQuestion(t *testing.T) {
	chat := &mockChat{response: "ok"}
	s := NewSynthesizer(chat, nil, nil, 0)

	conv := ConversationContext("What is on slide 1?", "Revenue.", "And slide 2?")
	s.Synthesize(context.Background(), "And slide 2?", []domain.Chunk{chunk(2, "Hiring")}, conv)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "Previous exchange:\nUser: What is on slide 1?\nAssistant: Revenue.")
}

func TestSynthesize_PromptStoreOverride(t *testing.T) {
	chat := &mockChat{response: "ok"}
	prompts := &mockPromptStore{template: "CTX[%s] Q[%s]"}
	s := NewSynthesizer(chat, prompts, nil, 0)

	s.Synthesize(context.Background(), "why?", []domain.Chunk{chunk(1, "because")}, "")
	assert.Equal(t, "CTX[because] Q[why?]", chat.prompts[0])
}

func TestSynthesize_BadTemplateFallsBack(t *testing.T) {
	for _, store := range []*mockPromptStore{
		{template: "only one %s"},
		{template: "CTX[%s] Q[%s] pages=%d"},
		{template: "%%s CTX[%s]"},
		{err: errors.New("missing")},
	} {
		chat := &mockChat{response: "ok"}
		s := NewSynthesizer(chat, store, nil, 0)
		s.Synthesize(context.Background(), "why?", []domain.Chunk{chunk(1, "because")}, "")
		assert.Contains(t, chat.prompts[0], "Guidelines:")
	}
}

func TestSynthesize_TemplateWithEscapedPercent(t *testing.T) {
	chat := &mockChat{response: "ok"}
	s := NewSynthesizer(chat, &mockPromptStore{template: "100%% grounded. CTX[%s] Q[%s]"}, nil, 0)

	s.Synthesize(context.Background(), "why?", []domain.Chunk{chunk(1, "because")}, "")
	assert.Equal(t, "100% grounded. CTX[because] Q[why?]", chat.prompts[0])
	assert.NotContains(t, chat.prompts[0], "%!")
}

func TestBuildContext_Budget(t *testing.T) {
	// RuneCounter: 4 runes per token; "\n\n" costs one token.
	s := NewSynthesizer(nil, nil, RuneCounter{}, 5)

	chunks := []domain.Chunk{
		chunk(1, "aaaaaaaa"),     // 2 tokens
		chunk(2, "bbbbbbbbbbbb"), // 3 tokens + separator overflows
		chunk(3, "cccc"),
	}
	assert.Equal(t, "aaaaaaaa\n\nbbbbbbbb", s.BuildContext(chunks))
}

func TestBuildContext_AllFit(t *testing.T) {
	s := NewSynthesizer(nil, nil, RuneCounter{}, 100)
	assert.Equal(t, "a\n\nb\n\nc", s.BuildContext([]domain.Chunk{chunk(1, "a"), chunk(2, "b"), chunk(3, "c")}))
}

func TestBuildContext_FirstChunkTruncated(t *testing.T) {
	s := NewSynthesizer(nil, nil, RuneCounter{}, 2)
	assert.Equal(t, strings.Repeat("x", 8), s.BuildContext([]domain.Chunk{chunk(1, strings.Repeat("x", 40))}))
}

func TestConversationContext(t *testing.T) {
	assert.Equal(t, "just this", ConversationContext("", "", "just this"))
	assert.Equal(t,
		"Previous exchange:\nUser: q1\nAssistant: a1\n\nNew question: q2",
		ConversationContext("q1", "a1", "q2"))
}

func TestRuneCounter(t *testing.T) {
	var c RuneCounter
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 1, c.Count("abc"))
	assert.Equal(t, 2, c.Count("héllo"))
	assert.Equal(t, "héll", c.Truncate("héllo world", 1))
	assert.Equal(t, "", c.Truncate("abc", 0))
	assert.Equal(t, "abc", c.Truncate("abc", 5))
}
