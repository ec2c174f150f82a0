// Package clean implements the row-level stages of the pipeline:
// structural validation, per-column field cleaning, and the exclusion
// filter. All transforms are total on string input; dirty field content
// passes through rather than erroring.
package clean

import (
	"strings"
	"time"
	_ "time/tzdata" // civil-timezone conversion must work without host tzdata

	"github.com/malimedia/auctionpipe/internal/schema"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	civilZone   = "Europe/Brussels"
	civilLayout = "2006-01-02 15:04:05"
	utcLayout   = "2006-01-02T15:04:05Z"
)

var brussels = mustLocation(civilZone)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("clean: load timezone " + name + ": " + err.Error())
	}
	return loc
}

var titleCaser = cases.Title(language.Dutch)

// Apply runs the transform tagged by kind over one field value.
func Apply(kind schema.TransformKind, val string) string {
	switch kind {
	case schema.TransformTrim:
		return strings.TrimSpace(val)
	case schema.TransformTrimLower:
		return strings.ToLower(strings.TrimSpace(val))
	case schema.TransformTrimTitle:
		return titleCaser.String(strings.TrimSpace(val))
	case schema.TransformDecimal:
		return Decimal(val)
	case schema.TransformDateTimeUTC:
		return DateTimeToUTC(val)
	case schema.TransformQuotedStrip:
		return QuotedFieldStrip(val)
	default:
		return val
	}
}

// Decimal normalizes a monetary field: the comma decimal separator is
// replaced with a period and the value reformatted with two-digit
// precision. Empty input yields zero; unparseable content is returned
// trimmed, as-is.
func Decimal(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return "0.00"
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(val, ",", "."))
	if err != nil {
		return val
	}
	return d.StringFixed(2)
}

// DateTimeToUTC converts a wall-clock timestamp like "2017-01-12 17:23:29"
// in Europe/Brussels civil time to "2017-01-12T16:23:29Z". Empty input
// yields empty output; unparseable content is returned trimmed, as-is.
func DateTimeToUTC(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return ""
	}
	ts, err := time.ParseInLocation(civilLayout, val, brussels)
	if err != nil {
		return val
	}
	return ts.UTC().Format(utcLayout)
}

// QuotedFieldStrip removes the `"=` artifacts spreadsheet exports wrap
// around identifier-like columns to stop Excel from eating leading zeros.
func QuotedFieldStrip(val string) string {
	return strings.Trim(strings.TrimSpace(val), `"=`)
}
