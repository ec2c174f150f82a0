// Package pipeline sequences one daily ingestion run: raw fetch from the
// store, schema normalization, structural validation, field cleaning,
// exclusion filtering, snapshot rotation, diffing, and persistence.
package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/malimedia/auctionpipe/internal/clean"
	"github.com/malimedia/auctionpipe/internal/logging"
	"github.com/malimedia/auctionpipe/internal/notify"
	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/schema"
	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
)

// Phase indicates how far a run progressed.
type Phase string

const (
	PhaseFetched    Phase = "fetched"
	PhaseNormalized Phase = "normalized"
	PhaseValidated  Phase = "validated"
	PhaseCleaned    Phase = "cleaned"
	PhaseFiltered   Phase = "filtered"
	PhaseRotated    Phase = "rotated"
	PhaseDiffed     Phase = "diffed"
	PhasePersisted  Phase = "persisted"
)

// Options configures a Pipeline.
type Options struct {
	Store      store.Store
	Notifier   notify.Notifier
	Exclusions *clean.Exclusions

	// CleanWorkers bounds the field cleaner's parallelism (default 1).
	CleanWorkers int

	// StoreTimeout is the per-call deadline applied to store operations.
	// Zero means the caller's context deadline alone applies.
	StoreTimeout time.Duration
}

// Pipeline runs the daily ingestion. One run is expected in flight per
// snapshot namespace at a time; concurrency control between runs belongs
// to the external scheduler.
type Pipeline struct {
	store        store.Store
	notifier     notify.Notifier
	exclusions   *clean.Exclusions
	rotator      *snapshot.Rotator
	cleanWorkers int
	storeTimeout time.Duration
}

// New builds a Pipeline from explicit collaborators. No process-wide
// state is involved; every dependency arrives here.
func New(opts Options) *Pipeline {
	workers := opts.CleanWorkers
	if workers < 1 {
		workers = 1
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Log{}
	}
	exclusions := opts.Exclusions
	if exclusions == nil {
		exclusions = clean.NewExclusions(nil, nil)
	}
	return &Pipeline{
		store:        opts.Store,
		notifier:     notifier,
		exclusions:   exclusions,
		rotator:      snapshot.NewRotator(opts.Store),
		cleanWorkers: workers,
		storeTimeout: opts.StoreTimeout,
	}
}

// Result reports what one run did.
type Result struct {
	RunID      string
	RawKey     string
	Phase      Phase
	RawRows    int
	BadRows    int
	Cleaned    int
	Removed    int
	NewRecords int
	Rotated    bool
	Duration   time.Duration
}

// Run executes one ingestion run over the raw export at rawKey. runDate
// is the calendar date the run belongs to; it tags the written snapshots
// and guards rotation against re-rotating on retry. A failed run writes
// nothing beyond rotation already performed.
func (p *Pipeline) Run(ctx context.Context, rawKey string, runDate time.Time) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), RawKey: rawKey}
	ctx = logging.WithRunID(ctx, res.RunID)
	log := logging.FromContext(ctx)

	// Fetch
	raw, err := p.storeGet(ctx, rawKey)
	if err != nil {
		return res, fmt.Errorf("fetch raw %s: %w", rawKey, err)
	}
	header, rows, err := parseRaw(raw)
	if err != nil {
		return res, fmt.Errorf("parse raw %s: %w", rawKey, err)
	}
	res.Phase = PhaseFetched
	res.RawRows = len(rows)
	log.Info("raw export fetched", "key", rawKey, "rows", len(rows))

	// Normalize
	rows, err = schema.NormalizeRows(header, rows)
	if err != nil {
		return res, err
	}
	res.Phase = PhaseNormalized

	// Validate
	good, bad := clean.SplitBadLines(rows)
	res.Phase = PhaseValidated
	res.BadRows = len(bad)
	if len(bad) > 0 {
		filename := path.Base(rawKey)
		log.Warn("bad lines found", "count", len(bad), "file", filename)
		p.notifier.Warn(ctx,
			fmt.Sprintf("Corrupt auction csv: %d bad lines in %s", len(bad), filename),
			clean.BadLineReport(bad))
	}

	// Clean
	recs, err := clean.Records(ctx, good, p.cleanWorkers)
	if err != nil {
		return res, fmt.Errorf("clean rows: %w", err)
	}
	res.Phase = PhaseCleaned
	res.Cleaned = len(recs)
	log.Debug("rows cleaned", "count", len(recs))

	// Filter
	recs, removed := p.exclusions.Filter(recs)
	res.Phase = PhaseFiltered
	res.Removed = removed
	log.Debug("rows filtered", "kept", len(recs), "removed", removed)

	// Rotate
	tag := snapshot.RunDate(runDate)
	switch err := p.rotate(ctx, tag); {
	case err == nil:
		res.Rotated = true
	case errors.Is(err, snapshot.ErrNothingToRotate):
		log.Info("no snapshot to rotate, first run")
	case errors.Is(err, snapshot.ErrAlreadyRotated):
		log.Warn("today snapshot already rotated for this run date, keeping yesterday")
	default:
		return res, err
	}
	res.Phase = PhaseRotated

	// Diff against the rotated-out snapshot
	yesterday, err := p.loadSnapshot(ctx, snapshot.KeyYesterday)
	if err != nil {
		return res, fmt.Errorf("load yesterday snapshot: %w", err)
	}
	diff := snapshot.NewRecords(recs, yesterday)
	res.Phase = PhaseDiffed
	res.NewRecords = len(diff)
	log.Info("diff computed", "new_records", len(diff), "yesterday_records", len(yesterday))

	// Persist today, diff, and the cumulative snapshot
	tags := map[string]string{
		snapshot.TagRunDate:   tag,
		snapshot.TagRawObject: path.Base(rawKey),
	}
	if err := p.writeSnapshot(ctx, snapshot.KeyToday, recs, tags); err != nil {
		return res, err
	}
	if err := p.writeSnapshot(ctx, snapshot.KeyDiff, diff, tags); err != nil {
		return res, err
	}
	if err := p.appendAll(ctx, recs, tags); err != nil {
		return res, err
	}
	res.Phase = PhasePersisted
	res.Duration = time.Since(start)
	log.Info("run persisted",
		"today_records", len(recs),
		"new_records", len(diff),
		"bad_rows", res.BadRows,
		"removed", removed,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) rotate(ctx context.Context, runDate string) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.rotator.Rotate(ctx, runDate)
}

// loadSnapshot fetches and decodes a cleaned snapshot; a missing key is
// an empty record set, not an error.
func (p *Pipeline) loadSnapshot(ctx context.Context, key string) ([]record.AuctionRecord, error) {
	data, err := p.storeGet(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(data)
}

func (p *Pipeline) writeSnapshot(ctx context.Context, key string, recs []record.AuctionRecord, tags map[string]string) error {
	data, err := snapshot.Encode(recs)
	if err != nil {
		return err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.store.Put(ctx, key, data, snapshot.ContentType, tags); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

// appendAll grows the cumulative snapshot by this run's records. Each
// run's records are appended as-is; records recur across runs.
func (p *Pipeline) appendAll(ctx context.Context, recs []record.AuctionRecord, tags map[string]string) error {
	existing, err := p.storeGet(ctx, snapshot.KeyAll)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load all snapshot: %w", err)
	}
	data, err := snapshot.AppendRows(existing, recs)
	if err != nil {
		return err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := p.store.Put(ctx, snapshot.KeyAll, data, snapshot.ContentType, tags); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snapshot.KeyAll, err)
	}
	return nil
}

func (p *Pipeline) storeGet(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.store.Get(ctx, key)
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.storeTimeout)
}

// parseRaw splits the semicolon-delimited raw export into header and data
// rows. Field counts are left unchecked here; the row validator owns
// structural rejection.
func parseRaw(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("raw export is empty")
	}
	return rows[0], rows[1:], nil
}
