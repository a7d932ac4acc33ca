package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestRecord is the flattened audit snapshot of a confirmed buy or sell
// request, including the contact details the public listing hides and the
// exact prices used. Pure write-behind: the application never reads these
// back, they exist for operational reference.
type RequestRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Side      Side      `json:"side"`

	Metal       Metal           `json:"metal"`
	ProductType string          `json:"product_type"`
	Purity      string          `json:"purity"`
	Amount      decimal.Decimal `json:"amount"`
	Unit        Unit            `json:"unit"`
	Grams       decimal.Decimal `json:"grams"`

	PricePerGramUsed decimal.Decimal     `json:"price_per_gram_used"`
	USDKRWUsed       decimal.NullDecimal `json:"usdkrw_used"`
	EstimatedTotal   decimal.Decimal     `json:"estimated_total_krw"`

	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Location string `json:"location"`
	Message  string `json:"message"`
}
