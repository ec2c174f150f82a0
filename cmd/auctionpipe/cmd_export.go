package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/malimedia/auctionpipe/internal/export"
	"github.com/malimedia/auctionpipe/internal/snapshot"
)

var exportKey string

// exportCmd converts a stored snapshot to a spreadsheet for manual
// consumers.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newStore(ctx)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}

		out, err := export.NewSheetExporter(s).Export(ctx, exportKey)
		if err != nil {
			return err
		}
		slog.Info("workbook written", "key", out)
		return nil
	},
}

// replicateCmd upserts the diff snapshot into the MySQL replica.
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Replicate the diff snapshot into the MySQL replica",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Replica.DSN == "" {
			return fmt.Errorf("REPLICA_MYSQL_DSN is not configured")
		}

		ctx := cmd.Context()
		s, err := newStore(ctx)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}

		r, err := export.NewReplicator(cfg.Replica.DSN, cfg.Replica.Table)
		if err != nil {
			return fmt.Errorf("replica: %w", err)
		}

		n, err := r.ReplicateDiff(ctx, s)
		if err != nil {
			return err
		}
		slog.Info("diff replicated", "rows", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportKey, "key", snapshot.KeyToday, "store key of the snapshot to export")
}
