// Package transcript renders the scrolling question and answer history.
package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// Turn is one question and, once it arrives, its answer.
type Turn struct {
	Question   string
	Answer     string
	Mode       domain.RetrievalMode
	References []domain.Reference
	Err        error
	Pending    bool
}

// Transcript displays conversation turns in a scrollable viewport.
type Transcript struct {
	turns    []Turn
	viewport viewport.Model
	styles   *styles.Styles
	width    int
	height   int
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		viewport: viewport.New(80, 10),
		styles:   s,
		width:    80,
		height:   10,
	}
	t.refresh()
	return t
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards scroll keys to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.styles.Transcript.Render(t.viewport.View())
}

// Ask appends a pending turn for question.
func (t *Transcript) Ask(question string) {
	t.turns = append(t.turns, Turn{Question: question, Pending: true})
	t.refresh()
}

// Resolve completes the most recent pending turn.
func (t *Transcript) Resolve(answer *domain.Answer, err error) {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if !t.turns[i].Pending {
			continue
		}
		turn := &t.turns[i]
		turn.Pending = false
		turn.Err = err
		if answer != nil {
			turn.Answer = answer.Text
			turn.Mode = answer.Mode
			turn.References = answer.References
		}
		break
	}
	t.refresh()
}

// Notice appends a system line, such as a document listing.
func (t *Transcript) Notice(text string) {
	t.turns = append(t.turns, Turn{Answer: text})
	t.refresh()
}

// Clear removes all turns.
func (t *Transcript) Clear() {
	t.turns = nil
	t.refresh()
}

// Turns returns the recorded turns.
func (t *Transcript) Turns() []Turn {
	return t.turns
}

// SetSize sets the outer dimensions of the transcript box.
func (t *Transcript) SetSize(width, height int) {
	t.width = width
	t.height = height
	fw, fh := t.styles.Transcript.GetFrameSize()
	t.viewport.Width = max(20, width-fw)
	t.viewport.Height = max(3, height-fh)
	t.refresh()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("Ask a question about the documents in this session.")
	}

	wrap := t.styles.Answer.Width(max(10, t.viewport.Width))
	blocks := make([]string, 0, len(t.turns))
	for _, turn := range t.turns {
		var b strings.Builder
		if turn.Question != "" {
			b.WriteString(t.styles.Question.Render("You: " + turn.Question))
			b.WriteString("\n")
		}
		switch {
		case turn.Pending:
			b.WriteString(t.styles.Muted.Render("..."))
		case turn.Err != nil:
			b.WriteString(t.styles.Error.Render("Error: " + turn.Err.Error()))
		default:
			b.WriteString(wrap.Render(turn.Answer))
			if line := referenceLine(turn.References); line != "" {
				b.WriteString("\n")
				b.WriteString(t.styles.Reference.Render(line))
			}
			if turn.Mode == domain.RetrievalModeFallback {
				b.WriteString("\n")
				b.WriteString(t.styles.Warning.Render("(best effort: semantic search unavailable)"))
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// referenceLine formats references as "Sources: page 1 (80%), page 2 (20%)".
func referenceLine(refs []domain.Reference) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		parts = append(parts, fmt.Sprintf("page %d (%.0f%%)", r.Unit, r.Accuracy))
	}
	return "Sources: " + strings.Join(parts, ", ")
}
