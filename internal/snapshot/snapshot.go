// Package snapshot manages the named snapshot set in the object store:
// the today/yesterday rotation, the cleaned-CSV codec, the diff engine,
// and the append-only cumulative snapshot.
package snapshot

import (
	"fmt"
	"time"
)

// Logical snapshot keys. At most one object exists per key; rotation is
// the only operation that reassigns a key to different content.
const (
	KeyToday     = "clean_csv/latest.csv"
	KeyYesterday = "clean_csv/yesterday.csv"
	KeyDiff      = "clean_csv/diff.csv"
	KeyAll       = "clean_csv/all.csv"
)

// ContentType is the content type of every snapshot object.
const ContentType = "text/csv"

// TagRunDate is the object tag carrying the run date of the run that
// wrote a snapshot. The rotator uses it to detect an already-rotated
// today snapshot on retry.
const TagRunDate = "run_date"

// TagRawObject records which raw export a cleaned snapshot came from.
const TagRawObject = "raw_object"

// RunDate formats a run timestamp the way snapshot tags expect it.
func RunDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// RawKey returns the store key of the raw export for a given day.
func RawKey(day time.Time) string {
	return fmt.Sprintf("raw_csv/%s/auctions-%s.csv",
		day.Format("2006/01"), day.Format("2006-01-02"))
}
