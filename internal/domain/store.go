package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ListingStore persists marketplace listings, append-only.
type ListingStore interface {
	Append(ctx context.Context, l Listing) error
	All(ctx context.Context) ([]Listing, error)
	GetByID(ctx context.Context, id string) (Listing, error)
}

// ThreadStore persists conversation threads, append-only.
type ThreadStore interface {
	Append(ctx context.Context, t Thread) error
	GetByID(ctx context.Context, id string) (Thread, error)
	// FindByListingAndMember returns the thread anchored to listingID whose
	// participants include uid, or ErrNotFound. Legacy threads match on the
	// reconstructed participant set.
	FindByListingAndMember(ctx context.Context, listingID, uid string) (Thread, error)
}

// MessageStore persists per-thread message logs, append-only.
type MessageStore interface {
	Append(ctx context.Context, threadID string, m Message) error
	List(ctx context.Context, threadID string) ([]Message, error)
}

// RequestLog is the best-effort audit sink for confirmed requests.
type RequestLog interface {
	Append(ctx context.Context, r RequestRecord) error
}

// PriceFeed fetches upstream reference values. Implementations apply their
// own per-request timeout; each call either returns a parsed value or an
// error, never blocks past the timeout.
type PriceFeed interface {
	SilverUSDPerOunce(ctx context.Context) (decimal.Decimal, error)
	GoldUSDPerOunce(ctx context.Context) (decimal.Decimal, error)
	USDRate(ctx context.Context) (decimal.Decimal, error)
}
