package snapshot

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/schema"
)

// Encode serializes records as a cleaned snapshot: comma-delimited CSV,
// header row of canonical clean names with bid_is_suspicious last. The
// suspicious flag is derived per record at write time.
func Encode(recs []record.AuctionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(schema.CleanHeader()); err != nil {
		return nil, fmt.Errorf("snapshot encode header: %w", err)
	}
	for _, r := range recs {
		if err := w.Write(r.CSVRow()); err != nil {
			return nil, fmt.Errorf("snapshot encode row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a cleaned snapshot back into records, skipping the header
// row and dropping the trailing derived suspicious column. It tolerates
// snapshots written without the derived column.
func Decode(data []byte) ([]record.AuctionRecord, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	recs := make([]record.AuctionRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == schema.ColumnCount+1 {
			row = row[:schema.ColumnCount]
		}
		rec, err := record.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("snapshot decode row %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// AppendRows serializes records without a header so they can be appended
// to the cumulative snapshot. When existing is empty a fresh snapshot
// including the header is produced instead.
func AppendRows(existing []byte, recs []record.AuctionRecord) ([]byte, error) {
	if len(existing) == 0 {
		return Encode(recs)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range recs {
		if err := w.Write(r.CSVRow()); err != nil {
			return nil, fmt.Errorf("snapshot append row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("snapshot append: %w", err)
	}
	out := make([]byte, 0, len(existing)+buf.Len())
	out = append(out, existing...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, buf.Bytes()...), nil
}
