package app

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/seojun-dev/geumbang/internal/config"
	"github.com/seojun-dev/geumbang/internal/feed"
	"github.com/seojun-dev/geumbang/internal/identity"
	"github.com/seojun-dev/geumbang/internal/market"
	"github.com/seojun-dev/geumbang/internal/price"
	"github.com/seojun-dev/geumbang/internal/server"
	"github.com/seojun-dev/geumbang/internal/server/handler"
	"github.com/seojun-dev/geumbang/internal/store/jsonl"
)

// Deps holds the wired application dependencies.
type Deps struct {
	PriceCache *price.Cache
	Market     *market.Service
	Handlers   server.Handlers
}

// Wire constructs the full dependency graph: storage layout, stores, feed
// client, price cache, identity assigner, market service, and handlers.
func Wire(cfg *config.Config, logger *slog.Logger) (Deps, error) {
	// Stored records and API payloads carry prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	dataDir := cfg.Storage.DataDir
	if err := jsonl.EnsureLayout(dataDir); err != nil {
		return Deps{}, fmt.Errorf("prepare data dir %q: %w", dataDir, err)
	}

	listings := jsonl.NewListingStore(dataDir)
	threads := jsonl.NewThreadStore(dataDir)
	messages := jsonl.NewMessageStore(dataDir)
	audit := jsonl.NewRequestLogStore(dataDir)

	feedClient := feed.NewClient(feed.Config{
		SilverURL:    cfg.Feed.SilverURL,
		GoldURL:      cfg.Feed.GoldURL,
		FXURL:        cfg.Feed.FXURL,
		RateCurrency: cfg.Feed.RateCurrency,
		Timeout:      cfg.Feed.Timeout.Duration,
	})
	cache := price.NewCache(feedClient, cfg.Feed.CacheTTL.Duration, logger)

	ids := identity.NewAssigner()
	marketSvc := market.NewService(listings, threads, messages, audit, cache, ids, logger)

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(cache, logger),
		Prices:   handler.NewPriceHandler(cache, logger),
		Listings: handler.NewListingHandler(marketSvc, ids, logger),
		Threads:  handler.NewThreadHandler(marketSvc, ids, logger),
	}

	return Deps{
		PriceCache: cache,
		Market:     marketSvc,
		Handlers:   handlers,
	}, nil
}
