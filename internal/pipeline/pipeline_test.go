package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/malimedia/auctionpipe/internal/clean"
	"github.com/malimedia/auctionpipe/internal/schema"
	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
)

// ============================================================================
// Test Fixtures
// ============================================================================

// captureNotifier records warnings for assertions.
type captureNotifier struct {
	subjects []string
	messages []string
}

func (c *captureNotifier) Warn(_ context.Context, subject, message string) {
	c.subjects = append(c.subjects, subject)
	c.messages = append(c.messages, message)
}

func rawHeader() string {
	names := make([]string, 0, schema.RawColumnCount)
	for _, c := range schema.Columns {
		names = append(names, c.RawName)
	}
	return strings.Join(append(names, "Clang_Error"), ";")
}

// rawLine builds one semicolon-delimited raw line for the given auction.
func rawLine(aucID, bid, email, payDate string) string {
	f := make([]string, schema.RawColumnCount)
	f[0] = "OGM" + aucID
	f[1] = "Partner"
	f[2] = "Auction " + aucID
	f[schema.ColAucID] = aucID
	f[4] = "https://example.com/" + aucID
	f[schema.ColHighBid] = bid
	f[schema.ColAdminCost] = "10,00"
	f[7] = "0"
	f[8] = "2017-01-12 17:23:29"
	f[schema.ColPayDate] = payDate
	f[16] = "jan"
	f[17] = "peeters"
	f[schema.ColCustEmail] = email
	return strings.Join(f, ";")
}

func rawExport(lines ...string) []byte {
	return []byte(rawHeader() + "\n" + strings.Join(lines, "\n") + "\n")
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func putRaw(t *testing.T, m *store.Memory, d time.Time, data []byte) string {
	t.Helper()
	key := snapshot.RawKey(d)
	if err := m.Put(context.Background(), key, data, "text/csv", nil); err != nil {
		t.Fatalf("Put(raw) error = %v", err)
	}
	return key
}

// ============================================================================
// Run Tests
// ============================================================================

func TestRun_FirstRun(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notifier := &captureNotifier{}
	p := New(Options{Store: m, Notifier: notifier, CleanWorkers: 2})

	d := day("2026-08-29")
	key := putRaw(t, m, d, rawExport(
		rawLine("1", "20,00", "jan@ok.com", ""),
		rawLine("2", "900,00", "piet@ok.com", ""),
	))

	res, err := p.Run(ctx, key, d)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Phase != PhasePersisted {
		t.Errorf("Phase = %q, want %q", res.Phase, PhasePersisted)
	}
	if res.RawRows != 2 || res.Cleaned != 2 || res.BadRows != 0 {
		t.Errorf("counts = raw %d, cleaned %d, bad %d; want 2, 2, 0", res.RawRows, res.Cleaned, res.BadRows)
	}
	if res.Rotated {
		t.Error("first run must not rotate")
	}
	if res.NewRecords != 2 {
		t.Errorf("NewRecords = %d, want 2", res.NewRecords)
	}

	today, err := m.Get(ctx, snapshot.KeyToday)
	if err != nil {
		t.Fatalf("Get(today) error = %v", err)
	}
	recs, err := snapshot.Decode(today)
	if err != nil {
		t.Fatalf("Decode(today) error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("today has %d records, want 2", len(recs))
	}
	// Auction 2 has a 900/10 bid with no settlement date
	if !strings.Contains(string(today), ",true") {
		t.Error("today snapshot must flag the suspicious bid")
	}

	tags, err := m.Tags(ctx, snapshot.KeyToday)
	if err != nil {
		t.Fatalf("Tags(today) error = %v", err)
	}
	if tags[snapshot.TagRunDate] != "2026-08-29" {
		t.Errorf("run date tag = %q, want %q", tags[snapshot.TagRunDate], "2026-08-29")
	}

	if len(notifier.subjects) != 0 {
		t.Errorf("got %d warnings, want none", len(notifier.subjects))
	}
}

func TestRun_SecondDayRotatesAndDiffs(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	p := New(Options{Store: m})

	d1 := day("2026-08-29")
	key1 := putRaw(t, m, d1, rawExport(
		rawLine("1", "20,00", "jan@ok.com", ""),
	))
	if _, err := p.Run(ctx, key1, d1); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	d2 := day("2026-08-30")
	key2 := putRaw(t, m, d2, rawExport(
		rawLine("1", "20,00", "jan@ok.com", ""),
		rawLine("2", "30,00", "piet@ok.com", ""),
	))
	res, err := p.Run(ctx, key2, d2)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if !res.Rotated {
		t.Error("second run must rotate")
	}
	if res.NewRecords != 1 {
		t.Errorf("NewRecords = %d, want 1", res.NewRecords)
	}

	diff, err := m.Get(ctx, snapshot.KeyDiff)
	if err != nil {
		t.Fatalf("Get(diff) error = %v", err)
	}
	diffRecs, err := snapshot.Decode(diff)
	if err != nil {
		t.Fatalf("Decode(diff) error = %v", err)
	}
	if len(diffRecs) != 1 || diffRecs[0].AuctionID != "2" {
		t.Errorf("diff = %v, want only auction 2", diffRecs)
	}

	// Cumulative snapshot holds both days' records
	all, err := m.Get(ctx, snapshot.KeyAll)
	if err != nil {
		t.Fatalf("Get(all) error = %v", err)
	}
	allRecs, err := snapshot.Decode(all)
	if err != nil {
		t.Fatalf("Decode(all) error = %v", err)
	}
	if len(allRecs) != 3 {
		t.Errorf("cumulative has %d records, want 3", len(allRecs))
	}

	// Yesterday is day one's snapshot
	yRecs, err := snapshot.Decode(mustGet(t, m, snapshot.KeyYesterday))
	if err != nil {
		t.Fatalf("Decode(yesterday) error = %v", err)
	}
	if len(yRecs) != 1 || yRecs[0].AuctionID != "1" {
		t.Errorf("yesterday = %v, want day one's auction 1", yRecs)
	}
}

func TestRun_RetrySameDayKeepsYesterday(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	p := New(Options{Store: m})

	d1 := day("2026-08-29")
	key1 := putRaw(t, m, d1, rawExport(rawLine("1", "20,00", "jan@ok.com", "")))
	if _, err := p.Run(ctx, key1, d1); err != nil {
		t.Fatalf("day one Run() error = %v", err)
	}

	d2 := day("2026-08-30")
	key2 := putRaw(t, m, d2, rawExport(
		rawLine("1", "20,00", "jan@ok.com", ""),
		rawLine("2", "30,00", "piet@ok.com", ""),
	))
	if _, err := p.Run(ctx, key2, d2); err != nil {
		t.Fatalf("day two Run() error = %v", err)
	}
	yesterdayBefore := mustGet(t, m, snapshot.KeyYesterday)

	// Same-day retry: rotation must refuse, yesterday stays day one's data.
	res, err := p.Run(ctx, key2, d2)
	if err != nil {
		t.Fatalf("retry Run() error = %v", err)
	}
	if res.Rotated {
		t.Error("retry must not rotate again")
	}
	yesterdayAfter := mustGet(t, m, snapshot.KeyYesterday)
	if string(yesterdayBefore) != string(yesterdayAfter) {
		t.Error("retry must leave yesterday untouched")
	}
	if res.NewRecords != 1 {
		t.Errorf("retry NewRecords = %d, want 1", res.NewRecords)
	}
}

func TestRun_BadLinesWarned(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	notifier := &captureNotifier{}
	p := New(Options{Store: m, Notifier: notifier})

	d := day("2026-08-29")
	key := putRaw(t, m, d, rawExport(
		rawLine("1", "20,00", "jan@ok.com", ""),
		"short;line;only",
		rawLine("2", "30,00", "piet@ok.com", ""),
	))

	res, err := p.Run(ctx, key, d)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.BadRows != 1 {
		t.Errorf("BadRows = %d, want 1", res.BadRows)
	}
	if res.Cleaned != 2 {
		t.Errorf("Cleaned = %d, want 2", res.Cleaned)
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("got %d warnings, want 1", len(notifier.subjects))
	}
	if !strings.Contains(notifier.subjects[0], "1 bad lines") {
		t.Errorf("warning subject = %q, want bad line count", notifier.subjects[0])
	}
	if !strings.Contains(notifier.messages[0], "short,line,only") {
		t.Errorf("warning body = %q, want rejected fields", notifier.messages[0])
	}
}

func TestRun_ExclusionFilter(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	p := New(Options{
		Store:      m,
		Exclusions: clean.NewExclusions([]string{"somedomain.com"}, nil),
	})

	d := day("2026-08-29")
	key := putRaw(t, m, d, rawExport(
		rawLine("1", "20,00", "alice@somedomain.com", ""),
		rawLine("2", "30,00", "bob@other.com", ""),
	))

	res, err := p.Run(ctx, key, d)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Removed != 1 {
		t.Errorf("Removed = %d, want 1", res.Removed)
	}

	recs, err := snapshot.Decode(mustGet(t, m, snapshot.KeyToday))
	if err != nil {
		t.Fatalf("Decode(today) error = %v", err)
	}
	if len(recs) != 1 || recs[0].AuctionID != "2" {
		t.Errorf("today = %v, want only auction 2", recs)
	}
}

func TestRun_MissingRawExport(t *testing.T) {
	m := store.NewMemory()
	p := New(Options{Store: m})

	d := day("2026-08-29")
	res, err := p.Run(context.Background(), snapshot.RawKey(d), d)
	if err == nil {
		t.Fatal("Run() without a raw export must fail")
	}
	if res.Phase != "" {
		t.Errorf("Phase = %q, want empty before fetch", res.Phase)
	}
}

func TestRun_UnrecognizedSchema(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	p := New(Options{Store: m})

	d := day("2026-08-29")
	key := putRaw(t, m, d, []byte("id;name;price\n1;x;2\n"))

	res, err := p.Run(ctx, key, d)
	if err == nil {
		t.Fatal("Run() with unknown schema must fail")
	}
	if res.Phase != PhaseFetched {
		t.Errorf("Phase = %q, want %q", res.Phase, PhaseFetched)
	}
	if _, getErr := m.Get(ctx, snapshot.KeyToday); getErr == nil {
		t.Error("failed run must not write snapshots")
	}
}

func mustGet(t *testing.T, m *store.Memory, key string) []byte {
	t.Helper()
	data, err := m.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", key, err)
	}
	return data
}
