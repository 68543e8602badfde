package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionRemoveForce bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions",
	Long: `A session groups documents that are asked about together. Each session
has its own index under the data directory.`,
}

var sessionRemoveCmd = &cobra.Command{
	Use:     "rm [session]",
	Aliases: []string{"remove"},
	Short:   "Remove a session and everything derived from it",
	Long: `Deletes the session's uploads, extracted units, media and index, removes
its documents from the catalog and drops the in-memory index.
Defaults to the --session flag when no session is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionRemove,
}

var sessionRebuildCmd = &cobra.Command{
	Use:   "rebuild [session]",
	Short: "Re-index a session from its extracted units",
	Long: `Re-chunks and re-embeds every stored unit of the session, for example after
changing the embedding provider or the chunk windows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionRebuild,
}

func init() {
	sessionRemoveCmd.Flags().BoolVarP(&sessionRemoveForce, "force", "f", false, "do not ask for confirmation")
	sessionCmd.AddCommand(sessionRemoveCmd)
	sessionCmd.AddCommand(sessionRebuildCmd)
	rootCmd.AddCommand(sessionCmd)
}

func targetSession(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return sessionID
}

func runSessionRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	target := targetSession(args)

	if !sessionRemoveForce {
		cmd.Printf("Remove session %q and all of its documents? [y/N]: ", target)
		if !confirm(cmd) {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := ingestService.RemoveSession(cmd.Context(), target); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	cmd.Printf("Removed session %q\n", target)
	return nil
}

func runSessionRebuild(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	target := targetSession(args)

	n, err := ingestService.Rebuild(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("failed to rebuild session: %w", err)
	}
	cmd.Printf("Rebuilt session %q: %d chunks\n", target, n)
	return nil
}
