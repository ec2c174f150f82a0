package snapshot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/malimedia/auctionpipe/internal/record"
	"github.com/malimedia/auctionpipe/internal/schema"
)

// ============================================================================
// Snapshot Codec Tests
// ============================================================================

func rec(aucID, payDate string) record.AuctionRecord {
	return record.AuctionRecord{
		OGM:       "OGM" + aucID,
		AuctionID: aucID,
		PayDate:   payDate,
		CustEmail: "x@y.com",
	}
}

func TestEncode_HeaderAndRows(t *testing.T) {
	data, err := Encode([]record.AuctionRecord{rec("1", "")})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	wantHeader := strings.Join(schema.CleanHeader(), ",")
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if !strings.HasSuffix(lines[1], ",false") {
		t.Errorf("data row %q must end with the suspicious flag", lines[1])
	}
}

func TestDecode_Roundtrip(t *testing.T) {
	in := []record.AuctionRecord{rec("1", ""), rec("2", "2017-01-12T16:23:29Z")}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	for i := range in {
		if out[i].AuctionID != in[i].AuctionID {
			t.Errorf("record %d AuctionID = %q, want %q", i, out[i].AuctionID, in[i].AuctionID)
		}
		if out[i].PayDate != in[i].PayDate {
			t.Errorf("record %d PayDate = %q, want %q", i, out[i].PayDate, in[i].PayDate)
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	out, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if out != nil {
		t.Errorf("Decode(nil) = %v, want nil", out)
	}
}

func TestAppendRows_FreshIncludesHeader(t *testing.T) {
	data, err := AppendRows(nil, []record.AuctionRecord{rec("1", "")})
	if err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte(schema.CleanHeader()[0])) {
		t.Error("fresh cumulative snapshot must start with the header")
	}
}

func TestAppendRows_AppendsWithoutHeader(t *testing.T) {
	first, err := AppendRows(nil, []record.AuctionRecord{rec("1", "")})
	if err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	second, err := AppendRows(first, []record.AuctionRecord{rec("2", "")})
	if err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	recs, err := Decode(second)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].AuctionID != "1" || recs[1].AuctionID != "2" {
		t.Errorf("cumulative order = %q, %q, want 1, 2", recs[0].AuctionID, recs[1].AuctionID)
	}
	if strings.Count(string(second), schema.SuspiciousColumn) != 1 {
		t.Error("cumulative snapshot must contain exactly one header")
	}
}
