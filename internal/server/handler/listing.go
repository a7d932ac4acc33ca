package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/seojun-dev/geumbang/internal/domain"
	"github.com/seojun-dev/geumbang/internal/market"
)

// MarketService defines the methods the listing and thread handlers require
// from the service layer. It is declared locally so the handler package does
// not depend on the concrete service implementation.
type MarketService interface {
	CreateListing(ctx context.Context, in domain.NewListingInput, ownerUID string) (market.CreateResult, error)
	Listing(ctx context.Context, id string) (domain.Listing, error)
	Listings(ctx context.Context) ([]domain.Listing, error)
	Contact(ctx context.Context, listingID, callerUID string) (domain.Thread, bool, error)
	Thread(ctx context.Context, threadID, callerUID string) (domain.Thread, error)
	SendMessage(ctx context.Context, threadID, callerUID, text string) (domain.Message, error)
	Messages(ctx context.Context, threadID string) ([]domain.Message, error)
}

// ListingHandler serves marketplace listing endpoints.
type ListingHandler struct {
	svc    MarketService
	ids    IdentitySource
	logger *slog.Logger
}

// NewListingHandler creates a ListingHandler with the given service,
// identity source, and logger.
func NewListingHandler(svc MarketService, ids IdentitySource, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		svc:    svc,
		ids:    ids,
		logger: logger,
	}
}

// listListingsResponse wraps the list endpoint output with metadata.
type listListingsResponse struct {
	Listings []domain.Listing `json:"listings"`
	Total    int              `json:"total"`
}

// ListListings returns every listing, newest first.
// GET /api/listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.Listings(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list listings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	writeJSON(w, http.StatusOK, listListingsResponse{
		Listings: listings,
		Total:    len(listings),
	})
}

// GetListing returns a single listing by its ID.
// GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	listing, err := h.svc.Listing(r.Context(), id)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, "listing not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get listing failed",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// createListingRequest carries a confirmed buy/sell submission.
type createListingRequest struct {
	Side        string          `json:"side"`
	Metal       string          `json:"metal"`
	ProductType string          `json:"product_type"`
	Purity      string          `json:"purity"`
	Amount      decimal.Decimal `json:"amount"`
	Unit        string          `json:"unit"`
	Location    string          `json:"location"`
	Message     string          `json:"message"`
	Name        string          `json:"name"`
	Contact     string          `json:"contact"`
	Confirm     string          `json:"confirm"`
}

type createListingResponse struct {
	Listing   domain.Listing `json:"listing"`
	RequestID string         `json:"request_id"`
}

// CreateListing publishes a confirmed buy/sell request as an anonymous
// listing owned by the caller's identity.
// POST /api/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := callerIdentity(w, r, h.ids)

	result, err := h.svc.CreateListing(r.Context(), domain.NewListingInput{
		Side:        req.Side,
		Metal:       req.Metal,
		ProductType: req.ProductType,
		Purity:      req.Purity,
		Amount:      req.Amount,
		Unit:        req.Unit,
		Location:    req.Location,
		Message:     req.Message,
		Name:        req.Name,
		Contact:     req.Contact,
		Confirm:     req.Confirm,
	}, uid)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create listing failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, createListingResponse{
		Listing:   result.Listing,
		RequestID: result.RequestID,
	})
}

// ContactListing opens (or returns) the caller's thread with the listing
// owner. 201 when a new thread is created, 200 when re-contacting.
// POST /api/listings/{id}/contact
func (h *ListingHandler) ContactListing(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	uid := callerIdentity(w, r, h.ids)

	thread, created, err := h.svc.Contact(r.Context(), id, uid)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: contact listing failed",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to contact listing")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, thread)
}
