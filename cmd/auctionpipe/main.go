// Command auctionpipe ingests daily auction CSV exports: fetch, clean,
// rotate, diff, and publish snapshots, plus downstream sheet and MySQL
// replication and an HTTP read surface.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/malimedia/auctionpipe/internal/clean"
	"github.com/malimedia/auctionpipe/internal/config"
	"github.com/malimedia/auctionpipe/internal/logging"
	"github.com/malimedia/auctionpipe/internal/notify"
	"github.com/malimedia/auctionpipe/internal/pipeline"
	"github.com/malimedia/auctionpipe/internal/store"
)

var cfg *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "auctionpipe",
	Short: "Daily auction CSV ingestion pipeline",
	Long: `auctionpipe turns the raw daily auction export into clean,
diffable snapshots in the object store.

Each run normalizes the export schema, validates and cleans every row,
drops blacklisted customers, classifies suspicious bids, rotates the
previous snapshot aside, and publishes today's snapshot, the set of
newly appeared records, and a cumulative append-only history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists (Overload overwrites existing env vars)
		if err := godotenv.Overload(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded", "config", cfg.String())
		return nil
	},
}

func main() {
	rootCmd.AddCommand(runCmd, fetchCmd, serveCmd, exportCmd, replicateCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newStore builds the S3-backed store from config.
func newStore(ctx context.Context) (store.Store, error) {
	return store.NewS3(ctx, cfg.Store.Bucket, cfg.Store.Region)
}

// newNotifier builds the warning channel: SNS when a topic is
// configured, otherwise log-only.
func newNotifier(ctx context.Context) (notify.Notifier, error) {
	if cfg.Notify.TopicARN == "" {
		return notify.Log{}, nil
	}
	return notify.NewSNS(ctx, cfg.Notify.TopicARN, cfg.Notify.Region)
}

// newPipeline assembles the orchestrator over the given collaborators.
func newPipeline(s store.Store, n notify.Notifier) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Store:        s,
		Notifier:     n,
		Exclusions:   clean.NewExclusions(cfg.Filter.Domains, cfg.Filter.Emails),
		CleanWorkers: cfg.Pipeline.CleanWorkers,
		StoreTimeout: cfg.Store.Timeout,
	})
}
