package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsOutput string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List the documents in a session",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

func init() {
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", outputText, "output format: text, json or yaml")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := validateOutput(docsOutput); err != nil {
		return err
	}

	docs, err := ingestService.Documents(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsOutput != outputText {
		return writeStructured(cmd, docsOutput, docs)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents in session %q.\n", sessionID)
		return nil
	}
	cmd.Printf("Documents in session %q:\n\n", sessionID)
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s\n", d.Name)
		cmd.Printf("    ID: %s\n", d.ID)
		cmd.Printf("    Type: %s, %d units, %s\n", d.FileType, d.Units, formatSize(d.Size))
		cmd.Printf("    Added: %s\n", d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
