package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultKrakenBaseURL   = "https://futures.kraken.com"
	defaultCoinGeckoURL    = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"
	BitcoinIndexInstrument = "PF_XBTUSD"
)

// KrakenIndexFeed resolves the Bitcoin index price from the Kraken futures
// ticker endpoint. The response schema has drifted over time, so the index
// price is located by an ordered list of extraction strategies; when the
// body is well-formed JSON but no strategy applies, a single fallback hop
// to the CoinGecko simple price endpoint is made.
type KrakenIndexFeed struct {
	BaseURL     string
	FallbackURL string
	Client      *http.Client
}

func NewKrakenIndexFeed() *KrakenIndexFeed {
	return &KrakenIndexFeed{
		BaseURL:     defaultKrakenBaseURL,
		FallbackURL: defaultCoinGeckoURL,
		Client:      &http.Client{Timeout: feedTimeout},
	}
}

func (f *KrakenIndexFeed) Resolve(ctx context.Context, instrument string) (Quote, error) {
	fail := func(feed string, cause error) (Quote, error) {
		return Quote{}, &FeedUnavailableError{Instrument: instrument, Feed: feed, Cause: cause}
	}

	url := fmt.Sprintf("%s/derivatives/api/v3/tickers/%s", f.BaseURL, instrument)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail("kraken", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return fail("kraken", fmt.Errorf("http do: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail("kraken", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fail("kraken", fmt.Errorf("decode response: %w", err))
	}

	for _, extract := range indexPriceExtractors {
		price, ok := extract(doc, instrument)
		if !ok {
			continue
		}
		if !validPrice(price) {
			return fail("kraken", fmt.Errorf("index price %v is not a finite positive number", price))
		}
		return Quote{Instrument: instrument, Price: price, FetchedAt: time.Now()}, nil
	}

	// Well-formed response without the expected field path: one fallback hop.
	logrus.WithField("instrument", instrument).Warn("Kraken response lacked index price field, trying CoinGecko")
	price, err := f.resolveFallback(ctx)
	if err != nil {
		return fail("kraken+coingecko", fmt.Errorf("primary response lacked index price field; fallback failed: %w", err))
	}
	if !validPrice(price) {
		return fail("coingecko", fmt.Errorf("fallback price %v is not a finite positive number", price))
	}
	return Quote{Instrument: instrument, Price: price, FetchedAt: time.Now()}, nil
}

func (f *KrakenIndexFeed) resolveFallback(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.FallbackURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	price, ok := payload["bitcoin"]["usd"]
	if !ok {
		return 0, fmt.Errorf("bitcoin usd price missing")
	}
	return price, nil
}

// An indexPriceExtractor inspects one known response shape; it returns
// (price, true) when the shape matches and the price field is present.
type indexPriceExtractor func(doc any, symbol string) (float64, bool)

// Ordered from most recent schema to oldest; first success wins.
var indexPriceExtractors = []indexPriceExtractor{
	extractFromResultTickers,
	extractFromResultDirect,
	extractFromResultSymbolKey,
	extractFromResultArray,
	extractFromTopLevelArray,
}

// {"result": {"tickers": [{"symbol": ..., "indexPrice": ...}, ...]}}
func extractFromResultTickers(doc any, symbol string) (float64, bool) {
	result, ok := resultObject(doc)
	if !ok {
		return 0, false
	}
	tickers, ok := result["tickers"].([]any)
	if !ok {
		return 0, false
	}
	return scanTickers(tickers, symbol)
}

// {"result": {"indexPrice": ...}}
func extractFromResultDirect(doc any, symbol string) (float64, bool) {
	result, ok := resultObject(doc)
	if !ok {
		return 0, false
	}
	return priceField(result, "indexPrice")
}

// {"result": {"PF_XBTUSD": {"indexPrice": ...}}}
func extractFromResultSymbolKey(doc any, symbol string) (float64, bool) {
	result, ok := resultObject(doc)
	if !ok {
		return 0, false
	}
	entry, ok := result[symbol].(map[string]any)
	if !ok {
		return 0, false
	}
	return priceField(entry, "indexPrice")
}

// {"result": [{"symbol": ..., "indexPrice": ...}, ...]}
func extractFromResultArray(doc any, symbol string) (float64, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return 0, false
	}
	tickers, ok := root["result"].([]any)
	if !ok {
		return 0, false
	}
	return scanTickers(tickers, symbol)
}

// [{"symbol": ..., "indexPrice": ...}, ...]
func extractFromTopLevelArray(doc any, symbol string) (float64, bool) {
	tickers, ok := doc.([]any)
	if !ok {
		return 0, false
	}
	return scanTickers(tickers, symbol)
}

func resultObject(doc any) (map[string]any, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	result, ok := root["result"].(map[string]any)
	return result, ok
}

func scanTickers(tickers []any, symbol string) (float64, bool) {
	for _, t := range tickers {
		entry, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if sym, _ := entry["symbol"].(string); sym != symbol {
			continue
		}
		return priceField(entry, "indexPrice")
	}
	return 0, false
}

// Kraken has served indexPrice both as a JSON number and as a string.
func priceField(entry map[string]any, key string) (float64, bool) {
	switch v := entry[key].(type) {
	case json.Number:
		price, err := v.Float64()
		return price, err == nil
	case float64:
		return v, true
	case string:
		price, err := strconv.ParseFloat(v, 64)
		return price, err == nil
	default:
		return 0, false
	}
}
