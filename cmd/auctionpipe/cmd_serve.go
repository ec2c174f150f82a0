package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/malimedia/auctionpipe/internal/fetch"
	"github.com/malimedia/auctionpipe/internal/pipeline"
	"github.com/malimedia/auctionpipe/internal/web"
)

// serveCmd runs the HTTP snapshot surface, optionally with the
// background run scheduler.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots over HTTP",
	Long: `Serve the snapshot read surface and the manual run trigger.
When PIPELINE_INTERVAL is set, a background scheduler also fetches and
processes the export on that cadence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := newStore(ctx)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		n, err := newNotifier(ctx)
		if err != nil {
			return fmt.Errorf("notifier: %w", err)
		}

		p := newPipeline(s, n)
		server := web.NewServer(s, p, cfg)

		// Create cancellable context for background jobs
		jobCtx, cancelJobs := context.WithCancel(context.Background())
		defer cancelJobs()

		if cfg.Pipeline.Interval > 0 {
			f := fetch.New(fetch.Options{
				Store:       s,
				Notifier:    n,
				URLTemplate: cfg.Fetch.ExportURL,
				MinBytes:    cfg.Fetch.MinBytes,
				Timeout:     cfg.Fetch.Timeout,
			})
			history := pipeline.NewHistory(s)

			go pipeline.StartScheduler(jobCtx, pipeline.ScheduleConfig{Interval: cfg.Pipeline.Interval},
				func(ctx context.Context, day time.Time) error {
					rawKey, err := f.FetchDay(ctx, day)
					if err != nil {
						return err
					}
					res, runErr := p.Run(ctx, rawKey, day)
					if err := history.Record(ctx, res, day, runErr); err != nil {
						slog.Error("run history write failed", "error", err)
					}
					return runErr
				})
		}

		// Graceful shutdown
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			slog.Info("shutting down...")
			cancelJobs()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
			}
		}()

		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}
