// Package cli implements the deckqa command line interface.
// It is a driving adapter: commands translate flags and arguments into
// calls on the core driving ports.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
	"github.com/custodia-labs/deckqa/internal/logger"
)

// DefaultSession is used when --session is not given.
const DefaultSession = "default"

var (
	version   = "dev"
	verbose   bool
	sessionID string
)

// Services wired by main.
var (
	ingestService   driving.IngestService
	qaService       driving.QAService
	configStore     driven.ConfigStore
	configValidator driven.AIConfigValidator
	settings        = domain.DefaultSettings()
	startupWarnings []string
)

// Services groups the dependencies the commands run against.
type Services struct {
	Ingest    driving.IngestService
	QA        driving.QAService
	Config    driven.ConfigStore
	Validator driven.AIConfigValidator
	Settings  domain.Settings

	// Warnings are start-up problems reported under --verbose.
	Warnings []string
}

var rootCmd = &cobra.Command{
	Use:   "deckqa",
	Short: "Ask questions about your slide decks and documents",
	Long: `deckqa ingests presentations, PDFs, Word documents, images, audio and
video into per-session indexes, then answers questions about them with
page and slide references.

Documents are extracted locally (OCR, table detection, transcription) and
embedded with the configured provider. Answers are generated by the
configured chat model from the retrieved passages only.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		for _, w := range startupWarnings {
			logger.Debug("%s", w)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", DefaultSession, "session to work in")
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	qaService = s.QA
	configStore = s.Config
	configValidator = s.Validator
	settings = s.Settings
	startupWarnings = s.Warnings
}

// SetVersion sets the version reported by 'deckqa version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
