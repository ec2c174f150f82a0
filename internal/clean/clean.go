package clean

import (
	"context"

	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/schema"
	"golang.org/x/sync/errgroup"
)

// Row applies the schema transform table to one structurally valid row in
// canonical column order. The trailing legacy error column, when present,
// is dropped; the derived suspicious column is never part of the table.
func Row(row []string) []string {
	out := make([]string, schema.ColumnCount)
	for _, col := range schema.Columns {
		if col.Index >= len(row) {
			break
		}
		out[col.Index] = Apply(col.Transform, row[col.Index])
	}
	return out
}

// Records cleans every row and builds typed records, preserving input
// order. Rows have no cross-row dependency, so cleaning fans out over a
// bounded worker group; results land at their original index.
func Records(ctx context.Context, rows [][]string, workers int) ([]record.AuctionRecord, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]record.AuctionRecord, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := record.FromRow(Row(row))
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
