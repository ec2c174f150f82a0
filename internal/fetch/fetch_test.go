package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
)

type captureNotifier struct {
	subjects []string
}

func (c *captureNotifier) Warn(_ context.Context, subject, _ string) {
	c.subjects = append(c.subjects, subject)
}

func TestFetchDay_StoresExport(t *testing.T) {
	body := strings.Repeat("OGM;1;2\n", 100)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(body))
	}))
	defer srv.Close()

	m := store.NewMemory()
	f := New(Options{
		Store:       m,
		URLTemplate: srv.URL + "/export?date={date}",
		MinBytes:    10,
		Timeout:     5 * time.Second,
	})

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	key, err := f.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatalf("FetchDay() error = %v", err)
	}
	if key != snapshot.RawKey(day) {
		t.Errorf("key = %q, want %q", key, snapshot.RawKey(day))
	}
	if gotPath != "/export?date=2026-08-29" {
		t.Errorf("requested path = %q, want date substituted", gotPath)
	}

	stored, err := m.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(stored) != body {
		t.Errorf("stored %d bytes, want %d", len(stored), len(body))
	}
}

func TestFetchDay_TooSmall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	m := store.NewMemory()
	notifier := &captureNotifier{}
	f := New(Options{
		Store:       m,
		Notifier:    notifier,
		URLTemplate: srv.URL + "/{date}",
		MinBytes:    1000,
	})

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if _, err := f.FetchDay(context.Background(), day); err == nil {
		t.Fatal("FetchDay() with a tiny export must fail")
	}
	if len(notifier.subjects) != 1 || !strings.Contains(notifier.subjects[0], "small") {
		t.Errorf("warnings = %v, want one size warning", notifier.subjects)
	}
	if _, err := m.Get(context.Background(), snapshot.RawKey(day)); err == nil {
		t.Error("rejected export must not be stored")
	}
}

func TestFetchDay_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	notifier := &captureNotifier{}
	f := New(Options{
		Store:       store.NewMemory(),
		Notifier:    notifier,
		URLTemplate: srv.URL + "/{date}",
	})

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if _, err := f.FetchDay(context.Background(), day); err == nil {
		t.Fatal("FetchDay() on 404 must fail")
	}
	if len(notifier.subjects) != 1 {
		t.Errorf("got %d warnings, want 1", len(notifier.subjects))
	}
}
