package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text from a file without indexing it",
	Long: `Runs the extraction pipeline on one file and prints the resulting units
(one per page, slide or frame). Nothing is stored or embedded, which makes
this useful for checking OCR and table detection on a document.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := validateOutput(extractOutput); err != nil {
		return err
	}

	units := ingestService.Extract(cmd.Context(), args[0])

	if extractOutput != outputText {
		return writeStructured(cmd, extractOutput, units)
	}
	printUnits(cmd, units)
	return nil
}

func printUnits(cmd *cobra.Command, units []domain.ContentUnit) {
	for i, u := range units {
		if i > 0 {
			cmd.Println()
		}
		if u.IsError() {
			cmd.Printf("--- unit %d [error: %s]\n", u.Number, u.Error)
			continue
		}
		cmd.Printf("--- unit %d\n", u.Number)
		text := strings.TrimSpace(u.Text)
		if text == "" {
			text = "(no text)"
		}
		cmd.Println(text)
	}
}
