package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

var retrieveOutput string

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [question]",
	Short: "Show the passages a question would be answered from",
	Long: `Runs retrieval only: no chat model is called. Prints the retrieval mode
(explicit, semantic, fallback or empty) and the selected passages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("QA service not configured")
	}
	if err := validateOutput(retrieveOutput); err != nil {
		return err
	}

	got, err := qaService.Retrieve(cmd.Context(), sessionID, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if retrieveOutput != outputText {
		return writeStructured(cmd, retrieveOutput, got)
	}

	cmd.Printf("Mode: %s\n", got.Mode)
	if got.Fallback != nil {
		cmd.Printf("Reason: %s\n", got.Fallback.Error())
	}
	cmd.Println()
	printChunks(cmd, got.Chunks)
	return nil
}

func printChunks(cmd *cobra.Command, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		cmd.Println("No passages.")
		return
	}
	cmd.Println("Passages:")
	for i, c := range chunks {
		cmd.Printf("  [%d] %s %d", i+1, c.Metadata.FileType.UnitKey(), c.Metadata.UnitOrDefault())
		if c.Metadata.DocumentID != "" {
			cmd.Printf(" (%s)", c.Metadata.DocumentID)
		}
		cmd.Println()
		cmd.Printf("      %s\n", strings.ReplaceAll(strings.TrimSpace(c.Text), "\n", "\n      "))
	}
}
