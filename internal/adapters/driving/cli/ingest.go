package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to a session",
	Long: `Stores each file in the session, extracts its pages or slides and
rebuilds the session index so the content can be asked about.

Examples:
  deckqa ingest quarterly.pptx
  deckqa ingest --session board report.pdf minutes.docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var failed int
	for _, path := range args {
		result, err := ingestService.Ingest(cmd.Context(), driving.IngestRequest{
			SessionID: sessionID,
			Path:      path,
			Progress: func(p driving.IngestProgress) {
				if p.Stage == driving.StageDone {
					return
				}
				cmd.Printf("  %-8s %s\n", p.Stage, p.Document)
			},
		})
		if err != nil {
			cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
			failed++
			continue
		}
		printIngestResult(cmd, result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, r *driving.IngestResult) {
	doc := r.Document
	cmd.Printf("Ingested %s (%s) into session %q\n", doc.Name, doc.FileType, doc.SessionID)
	cmd.Printf("  Document ID: %s\n", doc.ID)
	if r.Failed > 0 {
		cmd.Printf("  Units: %d (%d failed)\n", len(r.Units), r.Failed)
		for _, u := range r.Units {
			if u.IsError() {
				cmd.Printf("    unit %d: %s\n", u.Number, u.Error)
			}
		}
	} else {
		cmd.Printf("  Units: %d\n", len(r.Units))
	}
	cmd.Printf("  Session index: %d chunks\n", r.Chunks)
}
