// Package collector fetches per-symbol price history from a market-data
// provider. Providers are interchangeable behind the Fetcher interface.
package collector

import (
	"context"
	"fmt"
	"time"

	"TrendScout/internal/model"
)

// nowFunc is swapped in tests that need frozen retrieval timestamps.
var nowFunc = time.Now

// Fetcher retrieves ordered bars for one symbol and timeframe. limit is the
// number of most-recent bars wanted; implementations may return fewer, and
// the collector turns a count below limit's caller-side minimum into an
// UnavailableError via EnsureBars.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Bar, error)
	Name() string
}

// UnavailableError marks a per-symbol fetch failure: network error, unknown
// symbol, or too few bars. It is never fatal to a run; the pipeline records
// the symbol as skipped and moves on.
type UnavailableError struct {
	Symbol    string
	Timeframe model.Timeframe
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("series unavailable for %s (%s): %v", e.Symbol, e.Timeframe, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// FetchSeries fetches bars and wraps them in a PriceSeries, converting any
// provider error into an UnavailableError and enforcing the minimum bar
// count needed downstream.
func FetchSeries(ctx context.Context, f Fetcher, symbol string, tf model.Timeframe, limit, minBars int) (*model.PriceSeries, error) {
	bars, err := f.FetchBars(ctx, symbol, tf, limit)
	if err != nil {
		return nil, &UnavailableError{Symbol: symbol, Timeframe: tf, Err: err}
	}
	if len(bars) < minBars {
		return nil, &UnavailableError{
			Symbol:    symbol,
			Timeframe: tf,
			Err:       fmt.Errorf("got %d bars, need at least %d", len(bars), minBars),
		}
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: tf,
		Bars:      bars,
		FetchedAt: nowFunc(),
	}, nil
}
