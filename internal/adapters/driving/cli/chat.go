package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the session's documents",
	Long: `Opens an interactive chat over the session's documents. Each answer
lists the pages or slides it came from, and follow-up questions carry the
previous exchange.

Controls:
  Enter         - Ask
  PgUp/PgDn     - Scroll the conversation
  Ctrl+L        - Forget the conversation
  Esc / Ctrl+C  - Quit

Commands typed at the prompt:
  /docs    - List the session's documents
  /forget  - Forget the conversation
  /quit    - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if qaService == nil {
		return errors.New("QA service not configured")
	}
	if !isTerminal(cmd) {
		return errors.New("chat needs an interactive terminal; use 'deckqa ask' instead")
	}

	app, err := tui.NewApp(&tui.Ports{
		QA:        qaService,
		Ingest:    ingestService,
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
