package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side distinguishes buy requests from sell requests.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// NormalizeSide maps any unrecognized value to sell, matching the request
// form's default.
func NormalizeSide(s string) Side {
	if Side(s) == SideBuy {
		return SideBuy
	}
	return SideSell
}

// Listing is a published anonymous buy or sell request. Listings are
// immutable after creation; there is no edit or delete operation.
type Listing struct {
	ID            string          `json:"id"`
	Type          Side            `json:"type"`
	Metal         Metal           `json:"metal"`
	ProductType   string          `json:"product_type"`
	Purity        string          `json:"purity"`
	AmountGrams   decimal.Decimal `json:"amount"`
	Unit          Unit            `json:"unit"` // always grams once stored
	PricePerGram  decimal.Decimal `json:"price_per_gram"`
	EstimateTotal decimal.Decimal `json:"estimate_total"`
	Location      string          `json:"location"`
	Message       string          `json:"message"`
	CreatedAt     time.Time       `json:"created_at"`
	OwnerUID      string          `json:"owner_uid"`
	Alias         string          `json:"alias"`
	ContactHidden bool            `json:"contact_hidden"`
}

// NewListingInput carries the submitted form fields for listing creation.
// Amount/Unit are as entered by the user; the service converts to grams and
// prices the listing off the live snapshot at submission time.
type NewListingInput struct {
	Side        string
	Metal       string
	ProductType string
	Purity      string
	Amount      decimal.Decimal
	Unit        string
	Location    string
	Message     string
	Name        string
	Contact     string
	Confirm     string
}
