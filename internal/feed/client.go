// Package feed implements HTTP clients for the upstream spot-price and
// foreign-exchange sources the price cache refreshes from.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seojun-dev/geumbang/internal/domain"
)

// Config holds the three upstream endpoints and the fetch timeout applied to
// each individual request.
type Config struct {
	SilverURL    string
	GoldURL      string
	FXURL        string
	RateCurrency string // currency code looked up in the FX response, e.g. "KRW"
	Timeout      time.Duration
}

// Client fetches spot prices and the FX rate over plain HTTP GET. Each of
// the three sources is independent; a failure in one does not affect the
// others.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a feed client with the per-request timeout from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// spotResponse is the spot-price envelope: {"price": <USD per troy ounce>}.
type spotResponse struct {
	Price decimal.Decimal `json:"price"`
}

// fxResponse is the FX envelope: {"rates": {"KRW": <rate>, ...}}.
type fxResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// SilverUSDPerOunce fetches the silver spot price in USD per troy ounce.
func (c *Client) SilverUSDPerOunce(ctx context.Context) (decimal.Decimal, error) {
	return c.fetchSpot(ctx, c.cfg.SilverURL, "silver")
}

// GoldUSDPerOunce fetches the gold spot price in USD per troy ounce.
func (c *Client) GoldUSDPerOunce(ctx context.Context) (decimal.Decimal, error) {
	return c.fetchSpot(ctx, c.cfg.GoldURL, "gold")
}

// USDRate fetches the USD to local-currency rate from the FX source.
func (c *Client) USDRate(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.get(ctx, c.cfg.FXURL)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("feed: fetch fx: %w", err)
	}

	var resp fxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Decimal{}, fmt.Errorf("feed: decode fx response: %w", err)
	}

	rate, ok := resp.Rates[c.cfg.RateCurrency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("feed: fx response has no rate for %q", c.cfg.RateCurrency)
	}
	if rate.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("feed: non-positive fx rate %s for %q", rate, c.cfg.RateCurrency)
	}
	return rate, nil
}

func (c *Client) fetchSpot(ctx context.Context, url, name string) (decimal.Decimal, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("feed: fetch %s spot: %w", name, err)
	}

	var resp spotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Decimal{}, fmt.Errorf("feed: decode %s spot response: %w", name, err)
	}
	if resp.Price.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("feed: non-positive %s spot price %s", name, resp.Price)
	}
	return resp.Price, nil
}

// get performs a GET against url and returns the body for 200 responses.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Compile-time interface check.
var _ domain.PriceFeed = (*Client)(nil)
