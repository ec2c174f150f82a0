package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/malimedia/auctionpipe/internal/pipeline"
	"github.com/malimedia/auctionpipe/internal/snapshot"
	"github.com/malimedia/auctionpipe/internal/store"
)

// snapshotKeys maps URL-facing snapshot names to their store keys.
// Downstream consumers address snapshots by these logical names.
var snapshotKeys = map[string]string{
	"latest":    snapshot.KeyToday,
	"today":     snapshot.KeyToday,
	"yesterday": snapshot.KeyYesterday,
	"diff":      snapshot.KeyDiff,
	"all":       snapshot.KeyAll,
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleSnapshot streams a named snapshot from the store.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	key, ok := snapshotKeys[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown snapshot name")
		return
	}

	data, err := s.store.Get(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "snapshot not written yet")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "snapshot store unavailable")
		return
	}

	w.Header().Set("Content-Type", snapshot.ContentType)
	w.Write(data)
}

// handleTriggerRun runs the pipeline for today's raw export. The daily
// schedule lives outside this service; this endpoint exists for manual
// re-runs by operators.
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	if s.pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not configured")
		return
	}

	day := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
			return
		}
		day = parsed
	}

	res, err := s.pipeline.Run(r.Context(), snapshot.RawKey(day), day)
	if histErr := s.history.Record(r.Context(), res, day, err); histErr != nil {
		slog.Error("run history write failed", "error", histErr)
	}
	if err != nil {
		slog.Error("triggered run failed", "error", err, "phase", res.Phase)
		writeError(w, http.StatusInternalServerError, "run failed at phase "+string(res.Phase))
		return
	}
	writeJSON(w, res)
}

// handleRunHistory lists journaled run outcomes, newest first.
func (s *Server) handleRunHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, "run history unavailable")
		return
	}
	if entries == nil {
		entries = []pipeline.HistoryEntry{}
	}
	writeJSON(w, entries)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
