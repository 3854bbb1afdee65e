package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"larder/internal/notifications"
	"larder/internal/pipeline"
	"larder/internal/queue"
	"larder/internal/throttle"
)

func newIngestCommand(cmdCtx *commandContext) *cobra.Command {
	var delayMS int

	cmd := &cobra.Command{
		Use:   "ingest <photo>...",
		Short: "Upload, analyze and store a batch of recipe photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}

			paths, err := resolvePhotoPaths(args)
			if err != nil {
				return err
			}

			// One batch at a time per machine.
			if dir := filepath.Dir(cfg.Pipeline.LockPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create lock directory: %w", err)
				}
			}
			lock := flock.New(cfg.Pipeline.LockPath)
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire ingest lock: %w", err)
			}
			if !held {
				return fmt.Errorf("another ingest run holds %s; wait for it to finish", cfg.Pipeline.LockPath)
			}
			defer lock.Unlock()

			delay := time.Duration(cfg.Pipeline.RateLimitMS) * time.Millisecond
			if cmd.Flags().Changed("delay-ms") {
				if delayMS < 0 {
					return fmt.Errorf("--delay-ms must be >= 0")
				}
				delay = time.Duration(delayMS) * time.Millisecond
			}

			serializer := throttle.New(delay)
			defer serializer.Close()

			bound, err := cmdCtx.buildServices(logger)
			if err != nil {
				return err
			}
			defer bound.cleanup()

			notifier := notifications.NewService(cfg.Notifications)
			manager := pipeline.NewManager(queue.NewStore(), serializer, logger, notifier)
			manager.Reconfigure(bound.storage, bound.vision, bound.records)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			items, err := manager.SubmitBatch(ctx, paths)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processing %d photos (spacing %s between API calls)\n", len(items), delay)

			summary, err := manager.Drain(ctx)
			if err != nil {
				return err
			}

			colorize := false
			if f, ok := out.(*os.File); ok {
				colorize = isatty.IsTerminal(f.Fd())
			}
			fmt.Fprintln(out, renderItemsTable(manager.Store().List()))
			fmt.Fprintln(out, renderBatchSummary(summary, colorize))

			manager.Store().ClearTerminal()
			if summary.Processed == 0 && summary.Failed > 0 {
				return fmt.Errorf("all %d photos failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&delayMS, "delay-ms", 0, "Override the configured spacing between API calls in milliseconds")
	return cmd
}

func resolvePhotoPaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", arg, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%q is a directory; pass photo files", arg)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

func renderItemsTable(items []queue.Item) string {
	headers := []string{"File", "Status", "Progress", "Recipe", "Detail"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		name, detail := "", ""
		if item.Record != nil {
			name = item.Record.Name
			detail = item.Record.PersistedID
		}
		if item.Error != "" {
			detail = item.Error
		}
		rows = append(rows, []string{
			item.FileName,
			string(item.Status),
			strconv.Itoa(item.Progress) + "%",
			name,
			detail,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	return renderTable(headers, rows, aligns)
}

func renderBatchSummary(summary pipeline.Summary, colorize bool) string {
	kind := statusOK
	if summary.Failed > 0 {
		kind = statusWarn
	}
	message := fmt.Sprintf("%d stored, %d failed in %s",
		summary.Processed, summary.Failed, summary.Duration.Round(time.Second))
	return renderStatusLine("Batch", kind, message, colorize)
}
