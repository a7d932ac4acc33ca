package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojun-dev/geumbang/internal/domain"
	"github.com/seojun-dev/geumbang/internal/identity"
	"github.com/seojun-dev/geumbang/internal/store/jsonl"
)

type fixedPrices struct {
	snap domain.PriceSnapshot
}

func (f fixedPrices) Snapshot(ctx context.Context) domain.PriceSnapshot { return f.snap }

type captureAudit struct {
	records []domain.RequestRecord
	err     error
}

func (a *captureAudit) Append(ctx context.Context, r domain.RequestRecord) error {
	if a.err != nil {
		return a.err
	}
	a.records = append(a.records, r)
	return nil
}

type fixture struct {
	svc   *Service
	audit *captureAudit
	dir   string
}

func newFixture(t *testing.T, snap domain.PriceSnapshot) *fixture {
	t.Helper()
	dir := t.TempDir()
	audit := &captureAudit{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(
		jsonl.NewListingStore(dir),
		jsonl.NewThreadStore(dir),
		jsonl.NewMessageStore(dir),
		audit,
		fixedPrices{snap: snap},
		identity.NewAssigner(),
		logger,
	)
	return &fixture{svc: svc, audit: audit, dir: dir}
}

func testSnapshot() domain.PriceSnapshot {
	return domain.PriceSnapshot{
		Silver:    decimal.NullDecimal{Decimal: decimal.NewFromInt(1000), Valid: true},
		Gold:      decimal.NullDecimal{Decimal: decimal.NewFromInt(80000), Valid: true},
		USDKRW:    decimal.NullDecimal{Decimal: decimal.NewFromInt(1300), Valid: true},
		UpdatedAt: time.Now(),
	}
}

func validInput() domain.NewListingInput {
	return domain.NewListingInput{
		Side:    "sell",
		Metal:   "silver",
		Amount:  decimal.NewFromInt(2),
		Unit:    "kg",
		Name:    "  Kim  ",
		Contact: "010-0000-0000",
		Confirm: "yes",
	}
}

func TestCreateListing(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	result, err := fx.svc.CreateListing(ctx, validInput(), "owner-1")
	require.NoError(t, err)

	l := result.Listing
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, domain.SideSell, l.Type)
	assert.Equal(t, domain.MetalSilver, l.Metal)
	assert.Equal(t, "bar", l.ProductType, "empty product type defaults")
	assert.Equal(t, domain.UnitGram, l.Unit, "stored listings are gram-denominated")
	assert.True(t, l.AmountGrams.Equal(decimal.NewFromInt(2000)), "amount = %s", l.AmountGrams)
	assert.True(t, l.PricePerGram.Equal(decimal.NewFromInt(1000)))
	assert.True(t, l.EstimateTotal.Equal(decimal.NewFromInt(2000000)), "total = %s", l.EstimateTotal)
	assert.Equal(t, "owner-1", l.OwnerUID)
	assert.Regexp(t, `^Seller #[0-9A-F]{4}$`, l.Alias)
	assert.True(t, l.ContactHidden)

	// Audit record carries the hidden contact details and the prices used.
	require.Len(t, fx.audit.records, 1)
	rec := fx.audit.records[0]
	assert.Equal(t, result.RequestID, rec.ID)
	assert.Len(t, rec.ID, 8)
	assert.Equal(t, "Kim", rec.Name)
	assert.Equal(t, "010-0000-0000", rec.Contact)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(2)), "audit keeps amount as entered")
	assert.Equal(t, domain.UnitKilogram, rec.Unit)
	assert.True(t, rec.USDKRWUsed.Valid)

	// The listing is readable back, newest first.
	listings, err := fx.svc.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, l.ID, listings[0].ID)
}

func TestCreateListing_ConfirmFlag(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	for _, ok := range []string{"1", "yes", "true", "ok", " OK "} {
		in := validInput()
		in.Confirm = ok
		_, err := fx.svc.CreateListing(ctx, in, "u1")
		assert.NoError(t, err, "confirm %q", ok)
	}

	for _, bad := range []string{"", "0", "no", "maybe"} {
		in := validInput()
		in.Confirm = bad
		_, err := fx.svc.CreateListing(ctx, in, "u1")
		assert.ErrorIs(t, err, domain.ErrNotConfirmed, "confirm %q", bad)
	}
}

func TestCreateListing_RequiresNameAndContact(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	in := validInput()
	in.Name = "   "
	_, err := fx.svc.CreateListing(ctx, in, "u1")
	assert.ErrorIs(t, err, domain.ErrMissingContact)

	in = validInput()
	in.Contact = ""
	_, err = fx.svc.CreateListing(ctx, in, "u1")
	assert.ErrorIs(t, err, domain.ErrMissingContact)
}

func TestCreateListing_PricesUnavailable(t *testing.T) {
	fx := newFixture(t, domain.PriceSnapshot{})

	_, err := fx.svc.CreateListing(context.Background(), validInput(), "u1")
	assert.ErrorIs(t, err, domain.ErrPricesUnavailable)

	listings, err := fx.svc.Listings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings, "nothing persisted on a failed submission")
}

func TestCreateListing_AuditFailureDoesNotFailSubmission(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())
	fx.audit.err = errors.New("disk full")

	result, err := fx.svc.CreateListing(ctx, validInput(), "u1")
	require.NoError(t, err, "audit log is best-effort")
	assert.NotEmpty(t, result.Listing.ID)

	listings, err := fx.svc.Listings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestListings_NewestFirst(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	fx.svc.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Minute)
	}

	first, err := fx.svc.CreateListing(ctx, validInput(), "u1")
	require.NoError(t, err)
	second, err := fx.svc.CreateListing(ctx, validInput(), "u2")
	require.NoError(t, err)

	listings, err := fx.svc.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, second.Listing.ID, listings[0].ID)
	assert.Equal(t, first.Listing.ID, listings[1].ID)
}

func TestContact(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	result, err := fx.svc.CreateListing(ctx, validInput(), "owner-1")
	require.NoError(t, err)
	listingID := result.Listing.ID

	t.Run("unknown listing", func(t *testing.T) {
		_, _, err := fx.svc.Contact(ctx, "no-such-listing", "caller-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("self contact rejected", func(t *testing.T) {
		_, _, err := fx.svc.Contact(ctx, listingID, "owner-1")
		assert.ErrorIs(t, err, domain.ErrSelfContact)
	})

	t.Run("idempotent per counterpart", func(t *testing.T) {
		first, created, err := fx.svc.Contact(ctx, listingID, "caller-1")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.ThreadStatusOpen, first.Status)
		assert.ElementsMatch(t, []string{"caller-1", "owner-1"}, first.Members())

		again, created, err := fx.svc.Contact(ctx, listingID, "caller-1")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ThreadID, again.ThreadID)
	})

	t.Run("separate thread per counterpart", func(t *testing.T) {
		one, _, err := fx.svc.Contact(ctx, listingID, "caller-1")
		require.NoError(t, err)
		two, created, err := fx.svc.Contact(ctx, listingID, "caller-2")
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, one.ThreadID, two.ThreadID)
	})
}

func TestSendMessageAndListMessages(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	result, err := fx.svc.CreateListing(ctx, validInput(), "owner-1")
	require.NoError(t, err)
	thread, _, err := fx.svc.Contact(ctx, result.Listing.ID, "caller-1")
	require.NoError(t, err)

	_, err = fx.svc.SendMessage(ctx, "no-such-thread", "caller-1", "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = fx.svc.SendMessage(ctx, thread.ThreadID, "stranger", "hi")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	msg, err := fx.svc.SendMessage(ctx, thread.ThreadID, "caller-1", "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Text, "text is trimmed")
	assert.Equal(t, "You", msg.SenderAlias)

	_, err = fx.svc.SendMessage(ctx, thread.ThreadID, "owner-1", "welcome")
	require.NoError(t, err)

	msgs, err := fx.svc.Messages(ctx, thread.ThreadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello there", msgs[0].Text)
	assert.Equal(t, "welcome", msgs[1].Text)

	_, err = fx.svc.Messages(ctx, "no-such-thread")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestThread_ParticipantGate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	result, err := fx.svc.CreateListing(ctx, validInput(), "owner-1")
	require.NoError(t, err)
	thread, _, err := fx.svc.Contact(ctx, result.Listing.ID, "caller-1")
	require.NoError(t, err)

	got, err := fx.svc.Thread(ctx, thread.ThreadID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, thread.ThreadID, got.ThreadID)

	_, err = fx.svc.Thread(ctx, thread.ThreadID, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = fx.svc.Thread(ctx, "no-such-thread", "owner-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLegacyThreadSchema(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, testSnapshot())

	result, err := fx.svc.CreateListing(ctx, validInput(), "owner-1")
	require.NoError(t, err)
	listingID := result.Listing.ID

	// A thread persisted before the participants list existed.
	legacy := `{"thread_id":"t-legacy","listing_id":"` + listingID +
		`","listing_owner_uid":"owner-1","buyer_uid":"caller-1","created_at":"2023-04-01T10:00:00Z","status":"open"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(fx.dir, "threads.jsonl"), []byte(legacy), 0o644))

	// Contact by the same counterpart finds the legacy thread instead of
	// creating a duplicate.
	thread, created, err := fx.svc.Contact(ctx, listingID, "caller-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "t-legacy", thread.ThreadID)

	// Both legacy parties pass the access check; outsiders do not.
	_, err = fx.svc.SendMessage(ctx, "t-legacy", "owner-1", "still works")
	assert.NoError(t, err)
	_, err = fx.svc.SendMessage(ctx, "t-legacy", "caller-1", "indeed")
	assert.NoError(t, err)
	_, err = fx.svc.SendMessage(ctx, "t-legacy", "stranger", "nope")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
