package collector

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygonmodels "github.com/polygon-io/client-go/rest/models"

	"TrendScout/internal/model"
)

// PolygonFetcher implements Fetcher on the Polygon.io aggregates API. Any
// provider exposing (symbol, timeframe, start, end) -> ordered bars slots in
// the same way.
type PolygonFetcher struct {
	client *polygon.Client
}

// NewPolygonFetcher creates a fetcher authenticated with the given API key.
func NewPolygonFetcher(apiKey string) *PolygonFetcher {
	return &PolygonFetcher{client: polygon.New(apiKey)}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

// FetchBars fetches up to limit most-recent bars on the given timeframe.
func (f *PolygonFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Bar, error) {
	var timespan polygonmodels.Timespan
	var lookback time.Duration
	switch tf {
	case model.TimeframeDaily:
		timespan = polygonmodels.Timespan("day")
		// Calendar days to cover `limit` trading days.
		lookback = time.Duration(limit) * 36 * time.Hour
	case model.TimeframeHourly:
		timespan = polygonmodels.Timespan("hour")
		// Roughly 7 regular-session hourly bars per trading day.
		lookback = time.Duration(limit/5+1) * 24 * time.Hour
	default:
		return nil, fmt.Errorf("unsupported timeframe %q", tf)
	}

	to := time.Now()
	from := to.Add(-lookback)

	params := polygonmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   timespan,
		From:       polygonmodels.Millis(from),
		To:         polygonmodels.Millis(to),
	}.WithAdjusted(true).WithOrder(polygonmodels.Order("asc")).WithLimit(50000)

	it := f.client.ListAggs(ctx, params)
	var bars []model.Bar
	for it.Next() {
		agg := it.Item()
		bars = append(bars, model.Bar{
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggregates: %w", err)
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}
