package pricing_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dzubidas/ibit-strike-ratio/pkg/pricing"
)

func krakenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/derivatives/api/v3/tickers/PF_XBTUSD", r.URL.Path)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fallbackServer(t *testing.T, status int, body string, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// The Kraken futures ticker endpoint has served several response shapes
// over time; each known shape must resolve without touching the fallback.
func TestKrakenIndexFeedResponseShapes(t *testing.T) {
	cases := []struct {
		Name     string
		Body     string
		Expected float64
	}{
		{"tickers array", `{"result":{"tickers":[{"symbol":"PF_ETHUSD","indexPrice":3000},{"symbol":"PF_XBTUSD","indexPrice":65000.5}]}}`, 65000.5},
		{"direct index price as string", `{"result":{"indexPrice":"64000.25"}}`, 64000.25},
		{"symbol keyed", `{"result":{"PF_XBTUSD":{"indexPrice":63000}}}`, 63000},
		{"result as array", `{"result":[{"symbol":"PF_XBTUSD","indexPrice":"62000"}]}`, 62000},
		{"top level array", `[{"symbol":"PF_XBTUSD","indexPrice":61000}]`, 61000},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			var fallbackHits atomic.Int64
			primary := krakenServer(t, http.StatusOK, c.Body)
			fallback := fallbackServer(t, http.StatusOK, `{"bitcoin":{"usd":60000}}`, &fallbackHits)

			feed := pricing.NewKrakenIndexFeed()
			feed.BaseURL = primary.URL
			feed.FallbackURL = fallback.URL

			quote, err := feed.Resolve(context.Background(), pricing.BitcoinIndexInstrument)
			assert.NoError(t, err)
			assert.Equal(t, c.Expected, quote.Price)
			assert.Equal(t, int64(0), fallbackHits.Load())
		})
	}
}

func TestKrakenIndexFeedFallbackOnMissingFieldPath(t *testing.T) {
	var fallbackHits atomic.Int64
	primary := krakenServer(t, http.StatusOK, `{"serverTime":"2025-08-29T12:00:00Z"}`)
	fallback := fallbackServer(t, http.StatusOK, `{"bitcoin":{"usd":60000}}`, &fallbackHits)

	feed := pricing.NewKrakenIndexFeed()
	feed.BaseURL = primary.URL
	feed.FallbackURL = fallback.URL

	quote, err := feed.Resolve(context.Background(), pricing.BitcoinIndexInstrument)
	assert.NoError(t, err)
	assert.Equal(t, 60000.0, quote.Price)
	assert.Equal(t, int64(1), fallbackHits.Load())
}

func TestKrakenIndexFeedFallbackFailureCompounds(t *testing.T) {
	var fallbackHits atomic.Int64
	primary := krakenServer(t, http.StatusOK, `{"serverTime":"2025-08-29T12:00:00Z"}`)
	fallback := fallbackServer(t, http.StatusInternalServerError, "", &fallbackHits)

	feed := pricing.NewKrakenIndexFeed()
	feed.BaseURL = primary.URL
	feed.FallbackURL = fallback.URL

	_, err := feed.Resolve(context.Background(), pricing.BitcoinIndexInstrument)
	assert.Error(t, err)
	assert.True(t, pricing.IsFeedUnavailable(err))
	assert.Equal(t, int64(1), fallbackHits.Load())
}

// Transport and value failures from the primary fail outright: the
// fallback hop is reserved for a well-formed response that lacks the
// expected field path.
func TestKrakenIndexFeedNoFallbackOnPrimaryError(t *testing.T) {
	cases := []struct {
		Name   string
		Status int
		Body   string
	}{
		{"http error", http.StatusBadGateway, ""},
		{"malformed payload", http.StatusOK, `{"result":`},
		{"non positive index price", http.StatusOK, `{"result":{"indexPrice":-42}}`},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			var fallbackHits atomic.Int64
			primary := krakenServer(t, c.Status, c.Body)
			fallback := fallbackServer(t, http.StatusOK, `{"bitcoin":{"usd":60000}}`, &fallbackHits)

			feed := pricing.NewKrakenIndexFeed()
			feed.BaseURL = primary.URL
			feed.FallbackURL = fallback.URL

			_, err := feed.Resolve(context.Background(), pricing.BitcoinIndexInstrument)
			assert.Error(t, err)
			assert.True(t, pricing.IsFeedUnavailable(err))
			assert.Equal(t, int64(0), fallbackHits.Load())
		})
	}
}
