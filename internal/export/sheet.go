// Package export feeds downstream consumers from the cleaned snapshots:
// a spreadsheet rendition for the sales team and a relational replica for
// reporting queries.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	"github.com/malimedia/auctionpipe/internal/logging"
	"github.com/malimedia/auctionpipe/internal/store"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetExporter renders cleaned snapshots as spreadsheets under exports/.
type SheetExporter struct {
	store store.Store
}

// NewSheetExporter returns an exporter over the given store.
func NewSheetExporter(s store.Store) *SheetExporter {
	return &SheetExporter{store: s}
}

// Export reads the snapshot at key and writes its spreadsheet rendition
// back to the store, returning the key written.
func (e *SheetExporter) Export(ctx context.Context, key string) (string, error) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load snapshot %s: %w", key, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse snapshot %s: %w", key, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", fmt.Errorf("sheet cell for row %d: %w", i, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return "", fmt.Errorf("sheet row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("render sheet: %w", err)
	}

	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	outKey := "exports/" + base + ".xlsx"
	if err := e.store.Put(ctx, outKey, buf.Bytes(), xlsxContentType, nil); err != nil {
		return "", fmt.Errorf("store sheet %s: %w", outKey, err)
	}
	logging.FromContext(ctx).Info("sheet exported", "snapshot", key, "key", outKey, "rows", len(rows))
	return outKey, nil
}
