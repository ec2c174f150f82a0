package pipeline

// scheduler.go provides background scheduling for the daily ingestion run.
//
// The scheduler is designed to be long-running and context-aware for graceful
// shutdown. It logs progress and errors but does not fail the application
// if individual runs fail; the next tick retries with a fresh run date.

import (
	"context"
	"log/slog"
	"time"
)

// ScheduleConfig holds configuration for the run scheduler.
// All fields have sensible defaults if zero values are provided.
type ScheduleConfig struct {
	Interval time.Duration // How often to run (default: 24h)
}

// Job is one scheduled unit of work for a given run day.
type Job func(ctx context.Context, day time.Time) error

// StartScheduler starts a background loop that executes job for the
// current day, then again every Interval. It runs immediately on start.
// The scheduler stops when the context is cancelled.
func StartScheduler(ctx context.Context, cfg ScheduleConfig, job Job) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	slog.Info("run scheduler started", "interval", interval.String())

	// Run immediately on startup
	runScheduledJob(ctx, job)

	// Then run periodically
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("run scheduler stopped")
			return
		case <-ticker.C:
			runScheduledJob(ctx, job)
		}
	}
}

// runScheduledJob performs one run cycle for today's date.
func runScheduledJob(ctx context.Context, job Job) {
	day := time.Now().UTC()
	start := time.Now()

	if err := job(ctx, day); err != nil {
		slog.Error("scheduled run failed", "day", day.Format("2006-01-02"), "error", err)
		return
	}
	slog.Info("scheduled run completed",
		"day", day.Format("2006-01-02"),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
