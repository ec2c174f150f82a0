package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/malimedia/auctionpipe/internal/store"
)

var (
	// ErrNothingToRotate means no today snapshot exists yet. Expected on
	// the first-ever run; the orchestrator treats it as non-fatal.
	ErrNothingToRotate = errors.New("snapshot: no today snapshot to rotate")

	// ErrAlreadyRotated means the existing today snapshot carries the
	// current run date: a previous attempt rotated and wrote it, then
	// failed later. Rotating again would destroy yesterday's content,
	// so the rotator refuses and the caller proceeds without rotating.
	ErrAlreadyRotated = errors.New("snapshot: today already rotated for this run date")
)

// Rotator moves the today snapshot to the yesterday key before a new
// today snapshot is written. The store has no atomic rename, so the move
// is copy-then-delete; content is preserved exactly by the copy.
type Rotator struct {
	store store.Store
}

// NewRotator returns a Rotator over the given store.
func NewRotator(s store.Store) *Rotator {
	return &Rotator{store: s}
}

// Rotate replaces yesterday with the current today snapshot. runDate is
// the current run's date tag; if today already carries it, this run date
// was rotated before and ErrAlreadyRotated is returned without touching
// the store.
func (r *Rotator) Rotate(ctx context.Context, runDate string) error {
	tags, err := r.store.Tags(ctx, KeyToday)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNothingToRotate
		}
		return fmt.Errorf("rotate: inspect %s: %w", KeyToday, err)
	}
	if tags[TagRunDate] == runDate {
		return ErrAlreadyRotated
	}

	slog.Info("rotating snapshot", "from", KeyToday, "to", KeyYesterday)
	if err := r.store.Copy(ctx, KeyToday, KeyYesterday); err != nil {
		return fmt.Errorf("rotate: copy %s to %s: %w", KeyToday, KeyYesterday, err)
	}
	if err := r.store.Delete(ctx, KeyToday); err != nil {
		return fmt.Errorf("rotate: delete %s: %w", KeyToday, err)
	}
	return nil
}
