package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckqa/internal/connectors/filesystem"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driving"
)

var (
	watchDebounce time.Duration
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest documents dropped into a directory",
	Long: `Watches a directory and ingests every supported file that is created or
rewritten in it into the session. Files are picked up once they have been
quiet for the debounce interval. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before a file is ingested")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest supported files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := filesystem.New(args[0], filesystem.WithDebounce(watchDebounce))
	defer watcher.Close()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	cmd.Printf("Watching %s for session %q (Ctrl+C to stop)\n", args[0], sessionID)

	ingest := func(path string) {
		result, err := ingestService.Ingest(ctx, driving.IngestRequest{SessionID: sessionID, Path: path})
		if err != nil {
			cmd.PrintErrf("Failed to ingest %s: %v\n", filepath.Base(path), err)
			return
		}
		printIngestResult(cmd, result)
	}

	if watchExisting {
		for _, path := range existingFiles(args[0]) {
			ingest(path)
		}
	}

	for change := range changes {
		cmd.Printf("%s: %s\n", change.Type, filepath.Base(change.Path))
		ingest(change.Path)
	}
	return nil
}

// existingFiles lists the supported, non-hidden files directly in dir.
func existingFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if domain.IsSupportedPath(path) {
			paths = append(paths, path)
		}
	}
	return paths
}
