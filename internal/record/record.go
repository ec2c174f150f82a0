// Package record defines the typed auction record produced by the cleaner
// and the suspicious-bid classification applied to it.
package record

import (
	"fmt"
	"strconv"

	"github.com/malimedia/auctionpipe/internal/schema"
	"github.com/shopspring/decimal"
)

// AuctionRecord is one auction's outcome in canonical form. It is built
// from a cleaned row and never mutated afterwards; a new run produces new
// records. Monetary fields carry two-digit precision; date fields are
// either empty or ISO-8601 UTC strings.
type AuctionRecord struct {
	OGM            string
	PartnerTitle   string
	AuctionTitle   string
	AuctionID      string
	AuctionLink    string
	HighBid        decimal.Decimal
	AdminCost      decimal.Decimal
	GuarantPrice   decimal.Decimal
	DateHighBid    string
	PayDate        string
	AnnulInsurance decimal.Decimal
	FullOption     decimal.Decimal
	AnnulDate      string
	CollectDate    string
	ExtraInfo      string
	ClangID        string
	CustFirstName  string
	CustLastName   string
	CustEmail      string
	CustStreet     string
	CustHouseNr    string
	CustHNrSuffix  string
	CustPostCode   string
	CustTown       string
	CustPhone      string
}

// FromRow builds a record from a cleaned row in canonical column order.
// The row must have exactly schema.ColumnCount fields. Monetary fields
// that fail to parse are kept as zero; the cleaner is permissive about
// dirty content and the record stays permissive with it.
func FromRow(row []string) (AuctionRecord, error) {
	if len(row) != schema.ColumnCount {
		return AuctionRecord{}, fmt.Errorf("record row has %d fields, want %d", len(row), schema.ColumnCount)
	}
	return AuctionRecord{
		OGM:            row[0],
		PartnerTitle:   row[1],
		AuctionTitle:   row[2],
		AuctionID:      row[3],
		AuctionLink:    row[4],
		HighBid:        parseDecimal(row[5]),
		AdminCost:      parseDecimal(row[6]),
		GuarantPrice:   parseDecimal(row[7]),
		DateHighBid:    row[8],
		PayDate:        row[9],
		AnnulInsurance: parseDecimal(row[10]),
		FullOption:     parseDecimal(row[11]),
		AnnulDate:      row[12],
		CollectDate:    row[13],
		ExtraInfo:      row[14],
		ClangID:        row[15],
		CustFirstName:  row[16],
		CustLastName:   row[17],
		CustEmail:      row[18],
		CustStreet:     row[19],
		CustHouseNr:    row[20],
		CustHNrSuffix:  row[21],
		CustPostCode:   row[22],
		CustTown:       row[23],
		CustPhone:      row[24],
	}, nil
}

// Row serializes the record back to canonical column order without the
// derived suspicious flag.
func (r AuctionRecord) Row() []string {
	return []string{
		r.OGM,
		r.PartnerTitle,
		r.AuctionTitle,
		r.AuctionID,
		r.AuctionLink,
		r.HighBid.StringFixed(2),
		r.AdminCost.StringFixed(2),
		r.GuarantPrice.StringFixed(2),
		r.DateHighBid,
		r.PayDate,
		r.AnnulInsurance.StringFixed(2),
		r.FullOption.StringFixed(2),
		r.AnnulDate,
		r.CollectDate,
		r.ExtraInfo,
		r.ClangID,
		r.CustFirstName,
		r.CustLastName,
		r.CustEmail,
		r.CustStreet,
		r.CustHouseNr,
		r.CustHNrSuffix,
		r.CustPostCode,
		r.CustTown,
		r.CustPhone,
	}
}

// CSVRow is Row with the derived suspicious flag appended last, matching
// the cleaned snapshot column set.
func (r AuctionRecord) CSVRow() []string {
	return append(r.Row(), strconv.FormatBool(r.Suspicious()))
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
