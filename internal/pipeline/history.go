package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/malimedia/auctionpipe/internal/store"
)

// HistoryKey is the store object holding the run journal, one JSON
// document per line, oldest first.
const HistoryKey = "runs/history.jsonl"

const historyContentType = "application/x-ndjson"

// HistoryEntry is one journaled run outcome.
type HistoryEntry struct {
	RunID      string    `json:"run_id"`
	Day        string    `json:"day"`
	RawKey     string    `json:"raw_key"`
	Phase      Phase     `json:"phase"`
	RawRows    int       `json:"raw_rows"`
	BadRows    int       `json:"bad_rows"`
	Cleaned    int       `json:"cleaned"`
	Removed    int       `json:"removed"`
	NewRecords int       `json:"new_records"`
	Rotated    bool      `json:"rotated"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// History journals run outcomes to the object store so operators can
// inspect past runs without access to process logs.
type History struct {
	store store.Store
}

// NewHistory creates a History backed by s.
func NewHistory(s store.Store) *History {
	return &History{store: s}
}

// Record appends one entry for the given run result. A nil result with
// a non-nil runErr still produces an entry so failed runs are visible.
func (h *History) Record(ctx context.Context, res *Result, day time.Time, runErr error) error {
	entry := HistoryEntry{
		Day: day.Format("2006-01-02"),
		At:  time.Now().UTC(),
	}
	if res != nil {
		entry.RunID = res.RunID
		entry.RawKey = res.RawKey
		entry.Phase = res.Phase
		entry.RawRows = res.RawRows
		entry.BadRows = res.BadRows
		entry.Cleaned = res.Cleaned
		entry.Removed = res.Removed
		entry.NewRecords = res.NewRecords
		entry.Rotated = res.Rotated
		entry.DurationMS = res.Duration.Milliseconds()
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	return h.append(ctx, entry)
}

// Recent returns up to n journaled entries, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]HistoryEntry, error) {
	body, err := h.store.Get(ctx, HistoryKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load run history: %w", err)
	}

	var entries []HistoryEntry
	for _, line := range bytes.Split(body, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e HistoryEntry
		if err := json.Unmarshal(line, &e); err != nil {
			// Skip lines damaged by partial writes rather than
			// failing the whole listing.
			continue
		}
		entries = append(entries, e)
	}

	// Newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func (h *History) append(ctx context.Context, entry HistoryEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	existing, err := h.store.Get(ctx, HistoryKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load run history: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(line)
	buf.WriteByte('\n')

	if err := h.store.Put(ctx, HistoryKey, buf.Bytes(), historyContentType, nil); err != nil {
		return fmt.Errorf("write run history: %w", err)
	}
	return nil
}
