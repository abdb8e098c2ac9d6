package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dompetkeluarga/backend/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangerRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "IDR", r.URL.Query().Get("to"))
		fmt.Fprint(w, `{"rates":{"IDR":16250.5}}`)
	}))
	defer srv.Close()

	e := NewExchangerWithBaseURL(srv.URL)
	rate, err := e.Rate(context.Background(), "usd")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(16250.5)), "rate = %s", rate)
}

func TestExchangerRateIDRIsIdentity(t *testing.T) {
	e := NewExchangerWithBaseURL("http://127.0.0.1:0")
	rate, err := e.Rate(context.Background(), "IDR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestExchangerRateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{}}`)
	}))
	defer srv.Close()

	e := NewExchangerWithBaseURL(srv.URL)
	_, err := e.Rate(context.Background(), "USD")
	assert.Error(t, err, "IDR missing from response")

	_, err = e.Rate(context.Background(), "")
	assert.Error(t, err)
}

func TestGoldClientFetchesSpotPrice(t *testing.T) {
	fx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{"IDR":16000}}`)
	}))
	defer fx.Close()
	spot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spot/gold", r.URL.Path)
		fmt.Fprint(w, `{"gold":2000}`)
	}))
	defer spot.Close()

	c := NewGoldClient(NewExchangerWithBaseURL(fx.URL), 700_000, logger.NewWithWriter(io.Discard)).
		WithBaseURL(spot.URL)

	quote := c.PricePerGram(context.Background())
	assert.Equal(t, SourceFetched, quote.Source)

	// 2000 USD/oz x 16000 IDR/USD / 31.1035 g/oz
	want := decimal.NewFromInt(2000).
		Mul(decimal.NewFromInt(16000)).
		Div(decimal.NewFromFloat(31.1035))
	assert.True(t, quote.PricePerGram.Equal(want), "price = %s", quote.PricePerGram)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestGoldClientFallsBack(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad payload", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}},
		{"missing price", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"silver":25}`)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spot := httptest.NewServer(tc.handler)
			defer spot.Close()

			c := NewGoldClient(NewExchangerWithBaseURL("http://127.0.0.1:0"), 700_000, logger.NewWithWriter(io.Discard)).
				WithBaseURL(spot.URL)

			quote := c.PricePerGram(context.Background())
			assert.Equal(t, SourceFallback, quote.Source)
			assert.True(t, quote.PricePerGram.Equal(decimal.NewFromInt(700_000)))
		})
	}
}

func TestGoldClientFallsBackWhenRateUnavailable(t *testing.T) {
	spot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"gold":2000}`)
	}))
	defer spot.Close()

	c := NewGoldClient(NewExchangerWithBaseURL("http://127.0.0.1:0"), 700_000, logger.NewWithWriter(io.Discard)).
		WithBaseURL(spot.URL)

	quote := c.PricePerGram(context.Background())
	assert.Equal(t, SourceFallback, quote.Source)
}
