package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Fixed replies used when no model answer is available.
const (
	ApologyMessage = "Sorry, I'm having trouble answering that question right now."
	NoDataMessage  = "Sorry, I don't have data to answer that yet. Upload a file first."
)

const chunkSeparator = "\n\n"

// Synthesizer turns retrieved chunks into an answer with one chat call.
type Synthesizer struct {
	chat    driven.ChatService
	prompts driven.PromptStore
	counter driven.TokenCounter
	budget  int
}

// NewSynthesizer creates a synthesizer. The prompt store and counter are
// optional; the built-in template and a rune-based counter are used instead.
func NewSynthesizer(
	chat driven.ChatService,
	prompts driven.PromptStore,
	counter driven.TokenCounter,
	budget int,
) *Synthesizer {
	if counter == nil {
		counter = RuneCounter{}
	}
	if budget <= 0 {
		budget = domain.DefaultTokenBudget
	}
	return &Synthesizer{chat: chat, prompts: prompts, counter: counter, budget: budget}
}

// Synthesize answers the question from the chunks. It never fails:
// a missing or failing model yields the apology message.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []domain.Chunk, conversation string) string {
	if len(chunks) == 0 {
		return NoDataMessage
	}
	if s.chat == nil {
		logger.Warn("No chat service configured")
		return ApologyMessage
	}

	if conversation == "" {
		conversation = question
	}
	prompt := fmt.Sprintf(s.template(), s.BuildContext(chunks), conversation)
	logger.Debug("Prompt: %d tokens", s.counter.Count(prompt))

	answer, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("Chat completion failed: %v", err)
		return ApologyMessage
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ApologyMessage
	}
	return answer
}

// BuildContext joins chunk texts until the token budget is spent. The
// chunk that overflows is truncated to what remains; later chunks are dropped.
func (s *Synthesizer) BuildContext(chunks []domain.Chunk) string {
	sepCost := s.counter.Count(chunkSeparator)
	var parts []string
	used := 0
	for i := range chunks {
		cost := s.counter.Count(chunks[i].Text)
		if len(parts) > 0 {
			cost += sepCost
		}
		if used+cost <= s.budget {
			parts = append(parts, chunks[i].Text)
			used += cost
			continue
		}
		remaining := s.budget - used
		if len(parts) > 0 {
			remaining -= sepCost
		}
		if remaining > 0 {
			if t := s.counter.Truncate(chunks[i].Text, remaining); t != "" {
				parts = append(parts, t)
			}
		}
		break
	}
	return strings.Join(parts, chunkSeparator)
}

func (s *Synthesizer) template() string {
	if s.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("Using built-in answer prompt: %v", err)
		return driven.DefaultAnswerPrompt
	}
	if n, ok := driven.TemplateVerbs(tmpl); !ok || n != 2 {
		logger.Warn("Answer prompt must contain exactly two %%s placeholders and no other verbs; using built-in prompt")
		return driven.DefaultAnswerPrompt
	}
	return tmpl
}

// ConversationContext frames a follow-up with the previous exchange.
func ConversationContext(prevQuestion, prevAnswer, question string) string {
	if prevQuestion == "" && prevAnswer == "" {
		return question
	}
	return fmt.Sprintf("Previous exchange:\nUser: %s\nAssistant: %s\n\n%s %s",
		prevQuestion, prevAnswer, newQuestionMarker, question)
}

// RuneCounter approximates tokens as four runes each.
type RuneCounter struct{}

var _ driven.TokenCounter = RuneCounter{}

// Count returns the approximate token count of text.
func (RuneCounter) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Truncate keeps the first n approximate tokens of text.
func (RuneCounter) Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	limit := n * 4
	i := 0
	for pos := range text {
		if i == limit {
			return text[:pos]
		}
		i++
	}
	return text
}
