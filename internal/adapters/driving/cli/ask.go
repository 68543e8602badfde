package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

var (
	askOutput           string
	askPreviousQuestion string
	askPreviousAnswer   string
	askShowChunks       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the session's documents",
	Long: `Retrieves the passages most relevant to the question, asks the chat
model to answer from them only, and ranks the pages or slides the answer
came from.

Questions naming a unit ("what is on slide 3?") read that unit directly.
Pass --previous-question and --previous-answer to ask a follow-up.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askOutput, "output", "o", outputText, "output format: text, json or yaml")
	askCmd.Flags().StringVar(&askPreviousQuestion, "previous-question", "", "previous question, for follow-ups")
	askCmd.Flags().StringVar(&askPreviousAnswer, "previous-answer", "", "previous answer, for follow-ups")
	askCmd.Flags().BoolVar(&askShowChunks, "chunks", false, "print the retrieved passages")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}
	if err := validateOutput(askOutput); err != nil {
		return err
	}

	req := driving.AskRequest{
		SessionID: sessionID,
		Question:  strings.Join(args, " "),
	}
	if askPreviousQuestion != "" || askPreviousAnswer != "" {
		req.Previous = &domain.Exchange{Question: askPreviousQuestion, Answer: askPreviousAnswer}
	}

	answer, err := qaService.Ask(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askOutput != outputText {
		if !askShowChunks {
			answer.Chunks = nil
		}
		return writeStructured(cmd, askOutput, answer)
	}
	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	cmd.Println()

	if len(answer.References) > 0 {
		cmd.Println("References:")
		for _, r := range answer.References {
			cmd.Printf("  page %-4d %6.2f%%  %s\n", r.Unit, r.Accuracy, r.URL)
		}
	}
	if answer.Mode == domain.RetrievalModeFallback {
		cmd.Println()
		cmd.Println("Note: semantic search was unavailable; the answer uses the first passages of the session.")
	}

	if askShowChunks {
		cmd.Println()
		printChunks(cmd, answer.Chunks)
	}
}
