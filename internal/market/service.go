// Package market implements the listing and thread manager: marketplace
// listing creation, counterparty contact, and per-listing conversation
// threads with participant-only access.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seojun-dev/geumbang/internal/domain"
	"github.com/seojun-dev/geumbang/internal/price"
)

// PriceSource provides the current snapshot for pricing new listings.
type PriceSource interface {
	Snapshot(ctx context.Context) domain.PriceSnapshot
}

// AliasSource generates display aliases for new listings.
type AliasSource interface {
	Alias(side domain.Side) string
}

// Service coordinates the listing, thread, and message stores.
type Service struct {
	listings domain.ListingStore
	threads  domain.ThreadStore
	messages domain.MessageStore
	audit    domain.RequestLog
	prices   PriceSource
	aliases  AliasSource
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service with all required dependencies.
func NewService(
	listings domain.ListingStore,
	threads domain.ThreadStore,
	messages domain.MessageStore,
	audit domain.RequestLog,
	prices PriceSource,
	aliases AliasSource,
	logger *slog.Logger,
) *Service {
	return &Service{
		listings: listings,
		threads:  threads,
		messages: messages,
		audit:    audit,
		prices:   prices,
		aliases:  aliases,
		logger:   logger.With(slog.String("component", "market")),
		now:      time.Now,
	}
}

// CreateResult is the outcome of a confirmed listing submission.
type CreateResult struct {
	Listing   domain.Listing
	RequestID string // short id of the audit record, shown back to the submitter
}

// confirmValues are the accepted confirmation flag spellings.
var confirmValues = map[string]bool{"1": true, "yes": true, "true": true, "ok": true}

// CreateListing validates a confirmed submission, prices it off the live
// snapshot, publishes the anonymous listing, and appends a best-effort
// audit record with the contact details the listing hides. The listing
// append fails loudly; the audit append is logged and swallowed so it never
// blocks the user-visible success.
func (s *Service) CreateListing(ctx context.Context, in domain.NewListingInput, ownerUID string) (CreateResult, error) {
	if !confirmValues[strings.ToLower(strings.TrimSpace(in.Confirm))] {
		return CreateResult{}, domain.ErrNotConfirmed
	}

	name := strings.TrimSpace(in.Name)
	contact := strings.TrimSpace(in.Contact)
	if name == "" || contact == "" {
		return CreateResult{}, domain.ErrMissingContact
	}

	side := domain.NormalizeSide(in.Side)
	productType := strings.TrimSpace(in.ProductType)
	if productType == "" {
		productType = "bar"
	}

	snap := s.prices.Snapshot(ctx)
	est, err := price.ComputeEstimate(in.Metal, in.Unit, in.Amount, snap)
	if err != nil {
		return CreateResult{}, err
	}

	now := s.now().UTC()
	listing := domain.Listing{
		ID:            uuid.NewString(),
		Type:          side,
		Metal:         domain.NormalizeMetal(in.Metal),
		ProductType:   productType,
		Purity:        strings.TrimSpace(in.Purity),
		AmountGrams:   est.Grams,
		Unit:          domain.UnitGram,
		PricePerGram:  est.PricePerGram,
		EstimateTotal: est.Total,
		Location:      strings.TrimSpace(in.Location),
		Message:       strings.TrimSpace(in.Message),
		CreatedAt:     now,
		OwnerUID:      ownerUID,
		Alias:         s.aliases.Alias(side),
		ContactHidden: true,
	}
	if err := s.listings.Append(ctx, listing); err != nil {
		return CreateResult{}, fmt.Errorf("market: save listing: %w", err)
	}

	record := domain.RequestRecord{
		ID:               uuid.NewString()[:8],
		CreatedAt:        now,
		Side:             side,
		Metal:            listing.Metal,
		ProductType:      productType,
		Purity:           listing.Purity,
		Amount:           in.Amount,
		Unit:             domain.NormalizeUnit(in.Unit),
		Grams:            est.Grams,
		PricePerGramUsed: est.PricePerGram,
		USDKRWUsed:       snap.USDKRW,
		EstimatedTotal:   est.Total,
		Name:             name,
		Contact:          contact,
		Location:         listing.Location,
		Message:          listing.Message,
	}
	if err := s.audit.Append(ctx, record); err != nil {
		s.logger.Warn("audit record append failed",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	return CreateResult{Listing: listing, RequestID: record.ID}, nil
}

// Listing returns one listing by id.
func (s *Service) Listing(ctx context.Context, id string) (domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// Listings returns every listing, newest first.
func (s *Service) Listings(ctx context.Context) ([]domain.Listing, error) {
	items, err := s.listings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("market: load listings: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Contact opens (or returns) the thread between callerUID and the listing
// owner. Re-contacting a listing already contacted by the same caller
// returns the existing thread, so the operation is idempotent per
// (listing, counterpart) pair. The listing owner cannot contact themselves.
func (s *Service) Contact(ctx context.Context, listingID, callerUID string) (domain.Thread, bool, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return domain.Thread{}, false, err
	}
	if callerUID == listing.OwnerUID {
		return domain.Thread{}, false, domain.ErrSelfContact
	}

	existing, err := s.threads.FindByListingAndMember(ctx, listingID, callerUID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Thread{}, false, fmt.Errorf("market: find thread: %w", err)
	}

	thread := domain.Thread{
		ThreadID:        uuid.NewString(),
		ListingID:       listingID,
		Participants:    []string{callerUID, listing.OwnerUID},
		ListingOwnerUID: listing.OwnerUID,
		BuyerUID:        callerUID,
		CreatedAt:       s.now().UTC(),
		Status:          domain.ThreadStatusOpen,
	}
	if err := s.threads.Append(ctx, thread); err != nil {
		return domain.Thread{}, false, fmt.Errorf("market: save thread: %w", err)
	}
	return thread, true, nil
}

// Thread returns one thread, restricted to its participants.
func (s *Service) Thread(ctx context.Context, threadID, callerUID string) (domain.Thread, error) {
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return domain.Thread{}, err
	}
	if !thread.HasMember(callerUID) {
		return domain.Thread{}, domain.ErrForbidden
	}
	return thread, nil
}

// SendMessage appends one message to the thread on behalf of callerUID.
// Non-participants are rejected. The sender's own display alias is the
// fixed "You"; alias personalization happens in the presentation layer.
func (s *Service) SendMessage(ctx context.Context, threadID, callerUID, text string) (domain.Message, error) {
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return domain.Message{}, err
	}
	if !thread.HasMember(callerUID) {
		return domain.Message{}, domain.ErrForbidden
	}

	msg := domain.Message{
		SenderUID:   callerUID,
		SenderAlias: "You",
		Text:        strings.TrimSpace(text),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.messages.Append(ctx, thread.ThreadID, msg); err != nil {
		return domain.Message{}, fmt.Errorf("market: save message: %w", err)
	}
	return msg, nil
}

// Messages returns the thread's full message log, oldest first.
func (s *Service) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	if _, err := s.threads.GetByID(ctx, threadID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.List(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("market: load messages: %w", err)
	}
	return msgs, nil
}
