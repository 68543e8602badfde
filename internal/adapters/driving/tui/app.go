package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

// Slash commands typed into the question input.
const (
	commandDocs   = "/docs"
	commandForget = "/forget"
	commandQuit   = "/quit"
)

// App is the chat application following the Elm architecture.
// It remembers the last answered exchange so follow-up questions
// carry their context.
type App struct {
	ports *Ports
	ctx   context.Context

	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	// previous is the last successful exchange.
	previous *domain.Exchange

	busy bool
	err  error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetSession(ports.SessionID)

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		statusbar:  bar,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("deckqa - "+a.ports.SessionID),
		a.input.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		a.busy = true
		a.transcript.Ask(msg.Question)
		a.statusbar.SetState(status.StateAsking)
		return a, a.ask(msg.Question)

	case messages.AnswerReceived:
		a.busy = false
		err := msg.Err
		if err == nil && msg.Answer == nil {
			err = ErrNoAnswer
		}
		a.transcript.Resolve(msg.Answer, err)
		if err != nil {
			a.setError(err)
			return a, nil
		}
		a.previous = &domain.Exchange{Question: msg.Question, Answer: msg.Answer.Text}
		a.statusbar.SetState(status.StateAnswered)
		a.statusbar.SetMessage(fmt.Sprintf("%s, %d references", msg.Answer.Mode, len(msg.Answer.References)))
		return a, nil

	case messages.DocumentsLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.transcript.Notice(documentListing(msg.Documents))
		a.statusbar.SetState(status.StateReady)
		a.statusbar.SetMessage(fmt.Sprintf("%d documents", len(msg.Documents)))
		return a, nil

	case messages.MemoryCleared:
		a.previous = nil
		a.transcript.Clear()
		a.statusbar.Clear()
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Forget):
		return a, emit(messages.MemoryCleared{})

	case keymap.Matches(key, a.keymap.Submit):
		if a.busy {
			return a, nil
		}
		question := a.input.Value()
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		return a, a.command(question)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// command maps slash commands to messages; anything else is a question.
func (a *App) command(text string) tea.Cmd {
	switch strings.ToLower(text) {
	case commandQuit:
		return emit(messages.Quit{})
	case commandForget:
		return emit(messages.MemoryCleared{})
	case commandDocs:
		return a.listDocuments()
	}
	return emit(messages.QuestionSubmitted{Question: text})
}

func (a *App) ask(question string) tea.Cmd {
	ctx := a.ctx
	qa := a.ports.QA
	req := driving.AskRequest{
		SessionID: a.ports.SessionID,
		Question:  question,
		Previous:  a.previous,
	}
	return func() tea.Msg {
		answer, err := qa.Ask(ctx, req)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (a *App) listDocuments() tea.Cmd {
	if a.ports.Ingest == nil {
		return emit(messages.ErrorOccurred{Err: ErrDocumentsUnavailable})
	}
	ctx := a.ctx
	svc := a.ports.Ingest
	session := a.ports.SessionID
	return func() tea.Msg {
		docs, err := svc.Documents(ctx, session)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.statusbar.SetState(status.StateError)
	a.statusbar.SetMessage(err.Error())
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func documentListing(docs []domain.Document) string {
	if len(docs) == 0 {
		return "No documents in this session. Add some with 'deckqa ingest'."
	}
	lines := make([]string, 0, len(docs)+1)
	lines = append(lines, "Documents:")
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("  %s (%s, %d units)", d.Name, d.FileType, d.Units))
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	title := a.styles.Title.Render("deckqa")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.input.View(),
		a.statusbar.View(),
	)
}

// Run starts the chat application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Previous returns the remembered exchange, if any.
func (a *App) Previous() *domain.Exchange {
	return a.previous
}

// Busy reports whether an answer is pending.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions lays the components out for a terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Title, input box (3 lines) and status bar.
	const chrome = 1 + 3 + 1
	a.transcript.SetSize(width, height-chrome)
	a.input.SetWidth(width)
	a.statusbar.SetWidth(width)
}
