package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/seojun-dev/geumbang/internal/domain"
	"github.com/seojun-dev/geumbang/internal/price"
)

// SnapshotSource provides the current price snapshot. It is declared locally
// so the handler package does not depend on the concrete cache.
type SnapshotSource interface {
	Snapshot(ctx context.Context) domain.PriceSnapshot
}

// PriceHandler serves the price feed and estimate endpoints.
type PriceHandler struct {
	prices SnapshotSource
	logger *slog.Logger
}

// NewPriceHandler creates a PriceHandler with the given snapshot source and
// logger.
func NewPriceHandler(prices SnapshotSource, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{
		prices: prices,
		logger: logger,
	}
}

// pricesResponse is the machine-readable price feed payload. Price fields
// are null when the feed has never succeeded.
type pricesResponse struct {
	SilverKRWPerGram *decimal.Decimal `json:"silver_krw_per_gram"`
	GoldKRWPerGram   *decimal.Decimal `json:"gold_krw_per_gram"`
	USDKRW           *decimal.Decimal `json:"usdkrw"`
	MarginPercent    int              `json:"margin_percent"`
	Updated          int64            `json:"updated"`
}

// Prices returns the current snapshot. This endpoint always answers 200 —
// a fully down feed shows as nulls, never as an error page.
// GET /api/prices
func (h *PriceHandler) Prices(w http.ResponseWriter, r *http.Request) {
	snap := h.prices.Snapshot(r.Context())

	var updated int64
	if !snap.UpdatedAt.IsZero() {
		updated = snap.UpdatedAt.Unix()
	}

	writeJSON(w, http.StatusOK, pricesResponse{
		SilverKRWPerGram: rounded(snap.Silver),
		GoldKRWPerGram:   rounded(snap.Gold),
		USDKRW:           rounded(snap.USDKRW),
		MarginPercent:    0,
		Updated:          updated,
	})
}

// rounded converts a nullable price to a 2-decimal display value or nil.
func rounded(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.Round(2)
	return &v
}

// estimateRequest is the estimate endpoint input. Amount accepts a JSON
// number or numeric string; MarginPercent is optional.
type estimateRequest struct {
	Metal         string           `json:"metal"`
	Unit          string           `json:"unit"`
	Amount        decimal.Decimal  `json:"amount"`
	MarginPercent *decimal.Decimal `json:"margin_percent"`
}

type estimateResponse struct {
	Grams           decimal.Decimal  `json:"grams"`
	PricePerGram    decimal.Decimal  `json:"price_per_gram"`
	Total           decimal.Decimal  `json:"total"`
	MarginPercent   *decimal.Decimal `json:"margin_percent,omitempty"`
	TotalWithMargin *decimal.Decimal `json:"total_with_margin,omitempty"`
}

// Estimate computes a quote for {metal, unit, amount} against the current
// snapshot, with an optional display margin on top of the reference total.
// POST /api/estimate
func (h *PriceHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap := h.prices.Snapshot(r.Context())
	est, err := price.ComputeEstimate(req.Metal, req.Unit, req.Amount, snap)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: estimate failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute estimate")
		return
	}

	resp := estimateResponse{
		Grams:        est.Grams,
		PricePerGram: est.PricePerGram.Round(2),
		Total:        est.Total,
	}

	if req.MarginPercent != nil {
		withMargin, err := price.ApplyMargin(est.Total, *req.MarginPercent)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.MarginPercent = req.MarginPercent
		resp.TotalWithMargin = &withMargin
	}

	writeJSON(w, http.StatusOK, resp)
}
