// Package pricing resolves live instrument prices from public HTTP feeds.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Quote is a single resolved price observation. It is immutable once
// created and never cached across runs.
type Quote struct {
	Instrument string
	Price      float64
	FetchedAt  time.Time
}

// Client resolves a named instrument's current price.
type Client interface {
	Resolve(ctx context.Context, instrument string) (Quote, error)
}

// FeedUnavailableError reports a transport, parse, or value failure from a
// price feed. A feed that returns a non-positive or non-finite price fails
// with this error rather than producing a degenerate Quote.
type FeedUnavailableError struct {
	Instrument string
	Feed       string
	Cause      error
}

func (e *FeedUnavailableError) Error() string {
	return fmt.Sprintf("price feed %s unavailable for %s: %v", e.Feed, e.Instrument, e.Cause)
}

func (e *FeedUnavailableError) Unwrap() error {
	return e.Cause
}

// IsFeedUnavailable reports whether err is (or wraps) a FeedUnavailableError.
func IsFeedUnavailable(err error) bool {
	var fu *FeedUnavailableError
	return errors.As(err, &fu)
}

const (
	feedTimeout = 10 * time.Second

	// Some providers block default Go user agents.
	userAgent = "Mozilla/5.0 (Linux; Ubuntu) AppleWebKit/537.36"
)

func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
