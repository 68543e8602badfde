package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
	"github.com/custodia-labs/deckqa/internal/logger"
	"github.com/custodia-labs/deckqa/internal/observability"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// QAService answers questions from the current session snapshot.
type QAService struct {
	sessions   driven.SessionStore
	builder    *IndexBuilder
	retriever  *Retriever
	synth      *Synthesizer
	attributor *Attributor
}

// NewQAService creates a new question answering service.
// The builder is used to load persisted snapshots on first use.
func NewQAService(
	sessions driven.SessionStore,
	builder *IndexBuilder,
	retriever *Retriever,
	synth *Synthesizer,
	attributor *Attributor,
) *QAService {
	return &QAService{
		sessions:   sessions,
		builder:    builder,
		retriever:  retriever,
		synth:      synth,
		attributor: attributor,
	}
}

// Ask retrieves, synthesises and attributes an answer.
func (s *QAService) Ask(ctx context.Context, req driving.AskRequest) (*domain.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" || strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("ask: %w: session and question are required", domain.ErrInvalidInput)
	}

	ctx, span := observability.StartAskSpan(ctx, req.SessionID)
	defer span.End()

	logger.Section("Ask")
	logger.Debug("Question: %q", question)

	conversation := ""
	if req.Previous != nil {
		conversation = ConversationContext(req.Previous.Question, req.Previous.Answer, question)
	}
	query := question
	if conversation != "" {
		query = conversation
	}

	retrieval := s.retriever.Retrieve(ctx, query, s.snapshot(req.SessionID))
	observability.RecordRetrieval(span, retrieval)
	logger.Debug("Retrieval mode %s, %d chunks", retrieval.Mode, len(retrieval.Chunks))

	answer := &domain.Answer{
		Question: question,
		Mode:     retrieval.Mode,
		Chunks:   retrieval.Chunks,
	}
	answer.Text = s.synth.Synthesize(ctx, question, retrieval.Chunks, conversation)
	answer.References = s.attributor.Attribute(question, answer.Text, retrieval.Chunks)
	return answer, nil
}

// Retrieve returns the chunks a question would be answered from.
func (s *QAService) Retrieve(ctx context.Context, sessionID, question string) (domain.Retrieval, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(sessionID) == "" {
		return domain.Retrieval{}, fmt.Errorf("retrieve: %w: session and question are required", domain.ErrInvalidInput)
	}
	return s.retriever.Retrieve(ctx, question, s.snapshot(sessionID)), nil
}

// snapshot returns the installed snapshot, loading the persisted one the
// first time a session is queried.
func (s *QAService) snapshot(sessionID string) *driven.Snapshot {
	if snap := s.sessions.Get(sessionID); snap != nil {
		return snap
	}
	if s.builder == nil {
		return nil
	}

	expected := s.sessions.Version(sessionID)
	snap := s.builder.LoadSession(sessionID)
	if snap.Empty() {
		return snap
	}
	if _, err := s.sessions.CompareAndInstall(sessionID, expected, snap); err != nil {
		logger.Debug("Snapshot for %s changed while loading", sessionID)
	}
	return s.sessions.Get(sessionID)
}
