package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultExchangeURL = "https://api.frankfurter.app"

// Exchanger fetches spot conversion rates into rupiah. Failures are
// returned to the caller, who leaves the value unconverted; there is no
// retry.
type Exchanger struct {
	http    *http.Client
	baseURL string
}

// NewExchanger creates an exchanger against the public rate API.
func NewExchanger() *Exchanger {
	return &Exchanger{
		http:    &http.Client{Timeout: 8 * time.Second},
		baseURL: defaultExchangeURL,
	}
}

// NewExchangerWithBaseURL points the exchanger at a custom endpoint,
// used by tests.
func NewExchangerWithBaseURL(baseURL string) *Exchanger {
	e := NewExchanger()
	e.baseURL = strings.TrimRight(baseURL, "/")
	return e
}

// Rate returns how many rupiah one unit of the given currency buys.
func (e *Exchanger) Rate(ctx context.Context, from string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" {
		return decimal.Zero, fmt.Errorf("invalid currency")
	}
	if from == "IDR" {
		return decimal.NewFromInt(1), nil
	}

	u := fmt.Sprintf("%s/latest?from=%s&to=IDR", e.baseURL, url.QueryEscape(from))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate %s: %w", from, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch rate %s: http %d", from, resp.StatusCode)
	}

	var raw struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate %s: %w", from, err)
	}
	rate, ok := raw.Rates["IDR"]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("rate %s: IDR not in response", from)
	}
	return decimal.NewFromFloat(rate), nil
}
