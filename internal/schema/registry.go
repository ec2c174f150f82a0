package schema

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedSchema is returned when the raw header matches no
// registered layout. There is no safe default column order, so this is
// fatal for the run.
var ErrUnrecognizedSchema = errors.New("unrecognized raw csv schema")

// Layout is one recognized raw header layout. Matches inspects the raw
// header row; Normalize rewrites a raw data row into the current layout.
type Layout struct {
	Name      string
	Matches   func(header []string) bool
	Normalize func(row []string) []string
}

// legacySuffixIndex is where the housing-number suffix column was inserted
// when it was added to the export. Legacy rows get an empty string there.
const legacySuffixIndex = 21

// Layouts is the ordered registry of recognized layouts. The first match
// wins, so more specific signatures come first. Adding a new export
// version means adding an entry here, not branching in the pipeline.
var Layouts = []Layout{
	{
		Name: "current",
		Matches: func(header []string) bool {
			return headerContains(header, "Klant_Toevoeging")
		},
		Normalize: func(row []string) []string { return row },
	},
	{
		Name: "legacy-no-suffix",
		Matches: func(header []string) bool {
			return headerContains(header, "OGM_code") && !headerContains(header, "Klant_Toevoeging")
		},
		Normalize: func(row []string) []string {
			if len(row) < legacySuffixIndex {
				// Too short to position the insert; leave it for the
				// row validator to reject.
				return row
			}
			out := make([]string, 0, len(row)+1)
			out = append(out, row[:legacySuffixIndex]...)
			out = append(out, "")
			return append(out, row[legacySuffixIndex:]...)
		},
	},
}

// Recognize returns the layout matching the raw header row.
func Recognize(header []string) (Layout, error) {
	for _, l := range Layouts {
		if l.Matches(header) {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("%w: header %v", ErrUnrecognizedSchema, header)
}

// NormalizeRows rewrites every raw row into the current layout based on
// the header row. Rows pass through unchanged for the current layout.
func NormalizeRows(header []string, rows [][]string) ([][]string, error) {
	layout, err := Recognize(header)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = layout.Normalize(row)
	}
	return out, nil
}

func headerContains(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
