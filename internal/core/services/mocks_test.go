package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// keywordEmbedder embeds text as keyword counts over a fixed vocabulary,
// plus a constant component so no vector is all zeros.
type keywordEmbedder struct {
	vocab  []string
	err    error
	failOn string
	dims   int
	calls  int
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding rejected")
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(m.vocab)+1)
	for i, word := range m.vocab {
		vec[i] = float32(strings.Count(lower, word))
	}
	vec[len(m.vocab)] = 1
	return vec, nil
}

func (m *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.vocab) + 1
}

func (m *keywordEmbedder) ModelName() string          { return "keyword" }
func (m *keywordEmbedder) Ping(context.Context) error { return nil }
func (m *keywordEmbedder) Close() error               { return nil }

// mockChat implements driven.ChatService for testing.
type mockChat struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (m *mockChat) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockChat) ModelName() string          { return "mock" }
func (m *mockChat) Ping(context.Context) error { return nil }
func (m *mockChat) Close() error               { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(string) (string, error) { return m.template, m.err }
func (m *mockPromptStore) Reload()                     {}

// mockCatalog implements driven.DocumentCatalog for testing.
type mockCatalog struct {
	mu     sync.Mutex
	docs   []domain.Document
	addErr error
}

func (m *mockCatalog) Add(_ context.Context, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *mockCatalog) Get(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == id {
			d := m.docs[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalog) List(_ context.Context, sessionID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Document
	for _, d := range m.docs {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockCatalog) Sessions(context.Context) ([]string, error) { return nil, nil }

func (m *mockCatalog) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.SessionID != sessionID {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *mockCatalog) Close() error { return nil }

// failingIndex implements driven.VectorIndex with a failing Search.
type failingIndex struct{ n int }

func (f *failingIndex) Add(...[]float32) error { return nil }
func (f *failingIndex) Search([]float32, int) ([]driven.VectorHit, error) {
	return nil, errors.New("index corrupted")
}
func (f *failingIndex) Len() int        { return f.n }
func (f *failingIndex) Dimensions() int { return 1 }

// fixedIndex returns preset hits.
type fixedIndex struct{ hits []driven.VectorHit }

func (f *fixedIndex) Add(...[]float32) error { return nil }
func (f *fixedIndex) Search([]float32, int) ([]driven.VectorHit, error) {
	return f.hits, nil
}
func (f *fixedIndex) Len() int        { return len(f.hits) }
func (f *fixedIndex) Dimensions() int { return 1 }

func chunk(unit int, text string) domain.Chunk {
	return domain.Chunk{Text: text, Metadata: domain.ChunkMetadata{Unit: unit}}
}
