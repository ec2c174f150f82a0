package clean

import (
	"fmt"
	"sort"
	"strings"
)

// BadLine is a raw row rejected on structural grounds: its field count
// differs from the reference length. It never enters a snapshot and is
// retained only for the operational warning.
type BadLine struct {
	Index  int // 0-based position in the raw file (after the header)
	Fields []string
}

// SplitBadLines separates structurally valid rows from bad lines. The
// first row is assumed correct and sets the reference length; every row
// of a different length is collected, keyed by its original index. This
// is a structural check only. Field content is not inspected.
func SplitBadLines(rows [][]string) ([][]string, map[int]BadLine) {
	if len(rows) == 0 {
		return nil, nil
	}
	ref := len(rows[0])
	bad := make(map[int]BadLine)
	good := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) != ref {
			bad[i] = BadLine{Index: i, Fields: row}
			continue
		}
		good = append(good, row)
	}
	if len(bad) == 0 {
		return good, nil
	}
	return good, bad
}

// BadLineReport renders all bad lines into one aggregated warning body,
// ordered by original row index.
func BadLineReport(bad map[int]BadLine) string {
	idx := make([]int, 0, len(bad))
	for i := range bad {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	var b strings.Builder
	for _, i := range idx {
		fmt.Fprintf(&b, "%d: %s\n", i, strings.Join(bad[i].Fields, ","))
	}
	return b.String()
}
