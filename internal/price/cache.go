// Package price owns the shared reference-price snapshot and the quote
// arithmetic computed against it.
package price

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/seojun-dev/geumbang/internal/domain"
)

// DefaultTTL is the freshness window after which a read triggers a
// background refresh.
const DefaultTTL = 15 * time.Minute

// Cache holds the latest known reference prices and FX rate. It is the only
// cross-request shared mutable state in the system: the snapshot is swapped
// as a whole under the mutex and handed out by value, so readers never
// observe a partial update. Readers never block on upstream I/O — a stale
// read fires a detached background refresh and returns the old snapshot.
type Cache struct {
	feed   domain.PriceFeed
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap domain.PriceSnapshot

	// refreshing guards against concurrent refreshes: a staleness trigger
	// that finds one in flight is a silent no-op, not a queued request.
	refreshing atomic.Bool
}

// NewCache creates an empty cache over the given feed. ttl <= 0 selects
// DefaultTTL.
func NewCache(feed domain.PriceFeed, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		feed:   feed,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "price_cache")),
		now:    time.Now,
	}
}

// Snapshot returns the current snapshot immediately. If it is incomplete or
// older than the freshness window, a background refresh is triggered but not
// awaited; the caller gets the possibly stale or empty snapshot either way.
func (c *Cache) Snapshot(ctx context.Context) domain.PriceSnapshot {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap.Stale(c.now(), c.ttl) {
		c.TriggerRefreshIfStale(ctx)
	}
	return snap
}

// TriggerRefreshIfStale starts one background refresh when the snapshot is
// stale and no refresh is already running. The refresh outlives the calling
// request: it runs on a detached context so no user-facing path waits on
// upstream I/O.
func (c *Cache) TriggerRefreshIfStale(ctx context.Context) {
	c.mu.RLock()
	stale := c.snap.Stale(c.now(), c.ttl)
	c.mu.RUnlock()
	if !stale {
		return
	}

	if !c.refreshing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.refreshing.Store(false)
		if err := c.Refresh(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("background refresh failed",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Refresh fetches the three upstream values in parallel, converts the
// ounce-denominated USD spot prices to local currency per gram, and swaps
// the whole snapshot atomically. On any fetch failure the snapshot —
// including its timestamp — is left untouched; the next staleness check
// retries.
func (c *Cache) Refresh(ctx context.Context) error {
	var silverOz, goldOz, rate decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		silverOz, err = c.feed.SilverUSDPerOunce(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		goldOz, err = c.feed.GoldUSDPerOunce(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rate, err = c.feed.USDRate(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("price: refresh: %w", err)
	}

	// USD/oz -> KRW/gram.
	ozToGram := decimal.NewFromFloat(domain.GramsPerTroyOunce)
	silver := silverOz.Mul(rate).Div(ozToGram)
	gold := goldOz.Mul(rate).Div(ozToGram)

	c.mu.Lock()
	c.snap = domain.PriceSnapshot{
		Silver:    decimal.NullDecimal{Decimal: silver, Valid: true},
		Gold:      decimal.NullDecimal{Decimal: gold, Valid: true},
		USDKRW:    decimal.NullDecimal{Decimal: rate, Valid: true},
		UpdatedAt: c.now(),
	}
	c.mu.Unlock()

	c.logger.Info("snapshot refreshed",
		slog.String("silver_per_gram", silver.StringFixed(2)),
		slog.String("gold_per_gram", gold.StringFixed(2)),
		slog.String("usd_rate", rate.StringFixed(2)),
	)
	return nil
}
