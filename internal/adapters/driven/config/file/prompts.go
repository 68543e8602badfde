package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompts are served when a prompt file is missing or unusable, and
// seed the prompt directory on first use.
var builtinPrompts = map[string]string{
	driven.PromptAnswer: driven.DefaultAnswerPrompt,
}

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// A file is read again whenever its modification time changes, so an edit
// applies to the next question even inside a running chat. A template
// whose %s placeholders do not match the built-in one, or that uses any
// other formatting verb, is ignored.
type PromptStore struct {
	dir string

	mu      sync.Mutex
	seeded  bool
	entries map[string]promptEntry
}

type promptEntry struct {
	modTime time.Time
	text    string
}

// NewPromptStore creates a prompt store over dir.
// If dir is empty, defaults to ~/.deckqa/prompts/. No I/O happens until
// the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName, "prompts")
	}
	return &PromptStore{dir: dir, entries: make(map[string]promptEntry)}, nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			logger.Debug("Prompt directory unavailable: %v", err)
		}
	}

	path := filepath.Join(s.dir, name+".txt")
	info, err := os.Stat(path)
	if err != nil {
		delete(s.entries, name)
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	if e, ok := s.entries[name]; ok && e.modTime.Equal(info.ModTime()) {
		return e.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	text := strings.TrimSpace(string(data))
	if known {
		want, _ := driven.TemplateVerbs(builtin)
		if got, ok := driven.TemplateVerbs(text); !ok {
			logger.Warn("Ignoring %s: only %%s placeholders and %%%% are allowed", path)
			text = builtin
		} else if got != want {
			logger.Warn("Ignoring %s: it has %d %%s placeholders, expected %d", path, got, want)
			text = builtin
		}
	}
	s.entries[name] = promptEntry{modTime: info.ModTime(), text: text}
	return text, nil
}

// Reload forgets every loaded template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.entries = make(map[string]promptEntry)
	s.mu.Unlock()
}

// seed writes the built-in templates and a README into a fresh directory.
// Existing files are left alone.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	files := map[string]string{"README.md": promptReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

const promptReadme = `# deckqa prompts

answer.txt is the prompt used to answer questions about your documents.
Edit it to change how answers are phrased; the change applies to the next
question, including in a running chat.

The template must contain exactly two %s placeholders:

1. The retrieved document content
2. The question, or the previous exchange followed by the new question

Write a literal percent sign as %%. A template with a different number of
placeholders, or with any other % sequence, is ignored and the built-in
prompt is used instead. Delete answer.txt to restore the default.
`
