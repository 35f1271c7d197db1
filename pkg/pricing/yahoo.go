package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFeed resolves equity prices from the Yahoo Finance chart endpoint.
type YahooFeed struct {
	BaseURL string
	Client  *http.Client
}

func NewYahooFeed() *YahooFeed {
	return &YahooFeed{
		BaseURL: defaultYahooBaseURL,
		Client:  &http.Client{Timeout: feedTimeout},
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (f *YahooFeed) Resolve(ctx context.Context, instrument string) (Quote, error) {
	fail := func(cause error) (Quote, error) {
		return Quote{}, &FeedUnavailableError{Instrument: instrument, Feed: "yahoo", Cause: cause}
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s", f.BaseURL, instrument)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("http do: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fail(fmt.Errorf("decode response: %w", err))
	}
	if len(payload.Chart.Result) == 0 {
		return fail(fmt.Errorf("chart result missing"))
	}
	price := payload.Chart.Result[0].Meta.RegularMarketPrice
	if price == nil {
		return fail(fmt.Errorf("regular market price missing"))
	}
	if !validPrice(*price) {
		return fail(fmt.Errorf("regular market price %v is not a finite positive number", *price))
	}

	return Quote{Instrument: instrument, Price: *price, FetchedAt: time.Now()}, nil
}
