package model

import "time"

// Timeframe is the bar granularity of a price series.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "daily"
	TimeframeHourly Timeframe = "hourly"
)

// Bar represents a single candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars fetched for one symbol on one timeframe.
// It is built fresh per scan and discarded after detection.
type PriceSeries struct {
	Symbol    string
	Timeframe Timeframe
	Bars      []Bar
	FetchedAt time.Time
}

// Closes extracts the close prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// WindowPair holds the short and long SMA window lengths for one timeframe.
type WindowPair struct {
	Short int `yaml:"short"`
	Long  int `yaml:"long"`
}
