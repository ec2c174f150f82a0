// Package fetch downloads the daily raw auction export from the partner
// endpoint and ships it to the object store under the day's raw key,
// catching broken exports before the pipeline runs.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/malimedia/auctionpipe/internal/logging"
	"github.com/malimedia/auctionpipe/internal/notify"
	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
)

// Fetcher downloads one day's export and stores it.
type Fetcher struct {
	client   *resty.Client
	store    store.Store
	notifier notify.Notifier

	urlTemplate string
	minBytes    int64
}

// Options configures a Fetcher.
type Options struct {
	Store    store.Store
	Notifier notify.Notifier

	// URLTemplate is the export URL with a {date} placeholder replaced
	// by the day as yyyy-mm-dd.
	URLTemplate string

	// MinBytes is the smallest plausible export; smaller responses are
	// rejected. Zero disables the check.
	MinBytes int64

	// Timeout bounds the HTTP download.
	Timeout time.Duration
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	client.SetRetryCount(2).SetRetryWaitTime(5 * time.Second)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Log{}
	}
	return &Fetcher{
		client:      client,
		store:       opts.Store,
		notifier:    notifier,
		urlTemplate: opts.URLTemplate,
		minBytes:    opts.MinBytes,
	}
}

// FetchDay downloads the export for the given day and stores it under the
// day's raw key. Returns the key written. A short or failed download
// raises a warning and errors out; nothing is stored.
func (f *Fetcher) FetchDay(ctx context.Context, day time.Time) (string, error) {
	date := day.Format("2006-01-02")
	url := strings.ReplaceAll(f.urlTemplate, "{date}", date)
	log := logging.WithFields(ctx, "date", date)
	log.Info("downloading raw export", "url", url)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		f.notifier.Warn(ctx, "Auction export download failed",
			fmt.Sprintf("Request failed: %v\nExport URL is: %q", err, url))
		return "", fmt.Errorf("download export: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 201 {
		f.notifier.Warn(ctx, "Auction export download failed",
			fmt.Sprintf("Unexpected status %d.\nExport URL is: %q", resp.StatusCode(), url))
		return "", fmt.Errorf("download export: status %d", resp.StatusCode())
	}

	body := resp.Body()
	if f.minBytes > 0 && int64(len(body)) < f.minBytes {
		f.notifier.Warn(ctx, "Auction export suspiciously small",
			fmt.Sprintf("File size unusually small: %d bytes.\nExport URL is: %q", len(body), url))
		return "", fmt.Errorf("export size %d below minimum %d", len(body), f.minBytes)
	}

	key := snapshot.RawKey(day)
	if err := f.store.Put(ctx, key, body, "text/csv", nil); err != nil {
		return "", fmt.Errorf("store raw export: %w", err)
	}
	log.Info("raw export stored", "key", key, "bytes", len(body))
	return key, nil
}
