package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsync/internal/logger"
)

var (
	watchFlag    bool
	intervalFlag time.Duration
)

// debounceDelay coalesces bursts of filesystem events into one pass.
const debounceDelay = 2 * time.Second

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run an incremental ingestion pass over all configured sources",
	Long: `Runs one ingestion pass: every configured source is diffed against the
ledger and only new, modified or deleted documents are re-indexed.
With --watch, filesystem sources are re-ingested on changes; with
--interval, passes repeat periodically (useful for log windows).`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false,
		"keep running and re-ingest on filesystem changes")
	ingestCmd.Flags().DurationVarP(&intervalFlag, "interval", "i", 0,
		"re-run the pass at this interval (e.g. 15m)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := ingestOnce(ctx, cmd, a); err != nil {
		return err
	}

	if !watchFlag && intervalFlag <= 0 {
		return nil
	}
	return ingestLoop(ctx, cmd, a)
}

// ingestOnce runs one pass while printing progress.
func ingestOnce(ctx context.Context, cmd *cobra.Command, a *app) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.ingestor.Run(ctx)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			status := a.ingestor.Status()
			cmd.Printf("Indexed %d, deleted %d, errors %d.\n",
				status.DocumentsIndexed, status.DocumentsDeleted, status.ErrorCount)
			return err
		case <-ticker.C:
			status := a.ingestor.Status()
			if status.DocumentsIndexed > 0 {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsIndexed)
			}
		}
	}
}

// ingestLoop re-runs the pass on filesystem events and/or a fixed interval
// until the context is cancelled. Pass failures are reported and the loop
// keeps going; the next pass retries from the ledger's consistent state.
func ingestLoop(ctx context.Context, cmd *cobra.Command, a *app) error {
	var events <-chan fsnotify.Event
	if watchFlag && len(a.watchDirs) > 0 {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		for _, dir := range a.watchDirs {
			if err := watcher.Add(dir); err != nil {
				logger.Warn("Cannot watch %s: %v", dir, err)
			}
		}
		events = watcher.Events
	}

	var tick <-chan time.Time
	if intervalFlag > 0 {
		ticker := time.NewTicker(intervalFlag)
		defer ticker.Stop()
		tick = ticker.C
	}

	cmd.Println("Watching for changes. Ctrl-C to stop.")

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			logger.Debug("Filesystem event: %s", event)
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			if err := ingestOnce(ctx, cmd, a); err != nil && ctx.Err() == nil {
				cmd.PrintErrf("Pass failed: %v\n", err)
			}
		case <-tick:
			if err := ingestOnce(ctx, cmd, a); err != nil && ctx.Err() == nil {
				cmd.PrintErrf("Pass failed: %v\n", err)
			}
		}
	}
}
