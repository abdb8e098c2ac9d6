package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultGoldURL = "https://api.metals.live"

// gramsPerTroyOunce converts the quoted per-ounce spot price.
var gramsPerTroyOunce = decimal.NewFromFloat(31.1035)

// Source tells callers where a price figure came from, so "real spot
// price" and "fallback estimate" are distinguishable instead of being
// inferred from a magic threshold.
type Source string

const (
	SourceFetched  Source = "fetched"
	SourceFallback Source = "fallback"
	SourceManual   Source = "manual"
)

// GoldQuote is a gold price in rupiah per gram with its provenance.
type GoldQuote struct {
	PricePerGram decimal.Decimal `json:"pricePerGram"`
	Source       Source          `json:"source"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// GoldClient fetches the gold spot price and converts it to rupiah per
// gram. It never fails: any fetch, parse, or conversion problem
// degrades to the configured fallback price, flagged as such.
type GoldClient struct {
	http      *http.Client
	baseURL   string
	exchanger *Exchanger
	fallback  decimal.Decimal
	log       zerolog.Logger
}

// NewGoldClient creates a gold price client. fallbackPrice is rupiah
// per gram, used whenever the live quote is unavailable.
func NewGoldClient(exchanger *Exchanger, fallbackPrice int64, log zerolog.Logger) *GoldClient {
	return &GoldClient{
		http:      &http.Client{Timeout: 8 * time.Second},
		baseURL:   defaultGoldURL,
		exchanger: exchanger,
		fallback:  decimal.NewFromInt(fallbackPrice),
		log:       log,
	}
}

// WithBaseURL points the client at a custom endpoint, used by tests.
func (c *GoldClient) WithBaseURL(baseURL string) *GoldClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// PricePerGram returns the current gold price in rupiah per gram.
func (c *GoldClient) PricePerGram(ctx context.Context) GoldQuote {
	quote, err := c.fetchSpot(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("gold spot fetch failed, using fallback price")
		return GoldQuote{PricePerGram: c.fallback, Source: SourceFallback, FetchedAt: time.Now()}
	}
	return quote
}

func (c *GoldClient) fetchSpot(ctx context.Context) (GoldQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/spot/gold", nil)
	if err != nil {
		return GoldQuote{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return GoldQuote{}, fmt.Errorf("fetch gold spot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GoldQuote{}, fmt.Errorf("fetch gold spot: http %d", resp.StatusCode)
	}

	var raw struct {
		Gold float64 `json:"gold"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return GoldQuote{}, fmt.Errorf("decode gold spot: %w", err)
	}
	if raw.Gold <= 0 {
		return GoldQuote{}, fmt.Errorf("gold spot: missing price")
	}

	usdRate, err := c.exchanger.Rate(ctx, "USD")
	if err != nil {
		return GoldQuote{}, fmt.Errorf("usd rate for gold spot: %w", err)
	}

	perGram := decimal.NewFromFloat(raw.Gold).Mul(usdRate).Div(gramsPerTroyOunce)
	return GoldQuote{PricePerGram: perGram, Source: SourceFetched, FetchedAt: time.Now()}, nil
}
