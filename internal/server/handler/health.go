package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the liveness endpoint. Beyond process liveness it
// reports whether the price snapshot is populated, since every quote depends
// on it.
type HealthHandler struct {
	prices SnapshotSource
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler over the given snapshot source.
func NewHealthHandler(prices SnapshotSource, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{prices: prices, logger: logger}
}

// HealthCheck always answers 200; an unpopulated price snapshot is reported
// in the body, not as an error status, so a cold start does not flap
// upstream checks.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.prices.Snapshot(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"prices_ok": snap.Complete(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
