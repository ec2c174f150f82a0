// Package schema defines the canonical auction export layout and the
// registry of recognized raw header layouts.
//
// The raw export is a semicolon-delimited CSV whose column set has changed
// over time. Every recognized layout is normalized to the current column
// order before any row-level processing happens, so the rest of the
// pipeline only ever sees the canonical layout.
package schema

// TransformKind tags the normalization function applied to a column.
// The cleaner evaluates these uniformly; no per-field special casing.
type TransformKind int

const (
	TransformTrim TransformKind = iota
	TransformTrimLower
	TransformTrimTitle
	TransformDecimal
	TransformDateTimeUTC
	TransformQuotedStrip
)

// Column describes one canonical column of the auction export.
type Column struct {
	Index     int           // Position in the normalized raw row
	RawName   string        // Header name in the raw export
	CleanName string        // Header name in cleaned snapshots
	Transform TransformKind // Normalization applied by the cleaner
	Relevant  bool          // Part of the diff projection
}

// Columns is the canonical layout in column order. The raw export carries
// one extra trailing column (Clang_Error) that is dropped during cleaning,
// and cleaned snapshots append a derived bid_is_suspicious column; neither
// appears here.
var Columns = []Column{
	{0, "OGM_code", "ogm", TransformQuotedStrip, false},
	{1, "Partner_Titel", "pa_title", TransformTrim, false},
	{2, "Veiling_Titel", "auc_title", TransformTrim, false},
	{3, "Veiling_ID", "auc_id", TransformQuotedStrip, true},
	{4, "Veiling_link", "auc_link", TransformTrim, false},
	{5, "Hoogste_bod", "high_bid", TransformDecimal, false},
	{6, "Administratiekost", "admin_cost", TransformDecimal, false},
	{7, "Garante_prijs", "garant_price", TransformDecimal, false},
	{8, "Datum_Hoogste_bod", "date_high_bid", TransformDateTimeUTC, false},
	{9, "Betaal_datum", "pay_date", TransformDateTimeUTC, true},
	{10, "Annuleringsverzekering", "annul_ins", TransformDecimal, false},
	{11, "Full_option", "full_option", TransformDecimal, false},
	{12, "Annulatie_datum", "annul_date", TransformDateTimeUTC, true},
	{13, "Inningsdatum", "collect_date", TransformDateTimeUTC, true},
	{14, "Extra_informatie", "extra_info", TransformTrim, false},
	{15, "Clang_ID", "clang_id", TransformTrim, false},
	{16, "Klant_Voornaam", "cust_fname", TransformTrimTitle, false},
	{17, "Klant_Achternaam", "cust_lname", TransformTrimTitle, false},
	{18, "Klant_Email", "cust_email", TransformTrimLower, false},
	{19, "Klant_Straat", "cust_street", TransformTrim, false},
	{20, "Klant_Nummer", "cust_housenr", TransformTrim, false},
	{21, "Klant_Toevoeging", "cust_hnr_suff", TransformTrim, false},
	{22, "Klant_Postcode", "cust_post_code", TransformTrim, false},
	{23, "Klant_Gemeente", "cust_town", TransformTrimTitle, false},
	{24, "Klant_Telefoon", "cust_phone", TransformTrim, false},
}

const (
	// ColumnCount is the canonical number of data columns after cleaning.
	ColumnCount = 25

	// RawColumnCount includes the trailing Clang_Error column present in
	// the current raw layout.
	RawColumnCount = 26

	// SuspiciousColumn is the derived column appended to every serialized
	// record in cleaned snapshots.
	SuspiciousColumn = "bid_is_suspicious"

	// Well-known canonical positions used by the classifier and filter.
	ColAucID       = 3
	ColHighBid     = 5
	ColAdminCost   = 6
	ColPayDate     = 9
	ColAnnulDate   = 12
	ColCollectDate = 13
	ColCustEmail   = 18
)

// CleanHeader returns the header row for cleaned snapshots:
// canonical clean names with bid_is_suspicious appended last.
func CleanHeader() []string {
	out := make([]string, 0, ColumnCount+1)
	for _, c := range Columns {
		out = append(out, c.CleanName)
	}
	return append(out, SuspiciousColumn)
}

// Projection returns the ordered column indices whose values identify a
// record for change detection: auc_id plus the settlement date fields.
func Projection() []int {
	var idx []int
	for _, c := range Columns {
		if c.Relevant {
			idx = append(idx, c.Index)
		}
	}
	return idx
}
