package snapshot

import (
	"strings"

	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/schema"
)

// NewRecords returns today's records whose projection tuple does not
// appear in yesterday's set, in today's original order. The comparison is
// set membership over the declared projection, not a field-by-field
// diff: a record whose non-projected fields changed is not new.
func NewRecords(today, yesterday []record.AuctionRecord) []record.AuctionRecord {
	proj := schema.Projection()

	seen := make(map[string]struct{}, len(yesterday))
	for _, r := range yesterday {
		seen[projectionKey(r, proj)] = struct{}{}
	}

	var out []record.AuctionRecord
	for _, r := range today {
		if _, ok := seen[projectionKey(r, proj)]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// projectionKey flattens the projected fields into a map key. The unit
// separator keeps adjacent fields from colliding.
func projectionKey(r record.AuctionRecord, proj []int) string {
	row := r.Row()
	fields := make([]string, len(proj))
	for i, idx := range proj {
		fields[i] = row[idx]
	}
	return strings.Join(fields, "\x1f")
}
