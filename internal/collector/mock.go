package collector

import (
	"context"
	"sync"
	"time"

	"TrendScout/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars are keyed by symbol and timeframe; Errs injects per-symbol failures.
// Calls counts fetches per symbol/timeframe so tests can assert gating.
type MockFetcher struct {
	mu    sync.Mutex
	Bars  map[string]map[model.Timeframe][]model.Bar
	Errs  map[string]error
	Calls map[string]int
}

// NewMockFetcher creates an empty mock.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Bars:  make(map[string]map[model.Timeframe][]model.Bar),
		Errs:  make(map[string]error),
		Calls: make(map[string]int),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// SetBars installs a fixed series for a symbol and timeframe.
func (m *MockFetcher) SetBars(symbol string, tf model.Timeframe, bars []model.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Bars[symbol] == nil {
		m.Bars[symbol] = make(map[model.Timeframe][]model.Bar)
	}
	m.Bars[symbol][tf] = bars
}

// FailWith makes every fetch for the symbol return err.
func (m *MockFetcher) FailWith(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errs[symbol] = err
}

// CallCount reports how many times the symbol was fetched on the timeframe.
func (m *MockFetcher) CallCount(symbol string, tf model.Timeframe) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[symbol+"/"+string(tf)]
}

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[symbol+"/"+string(tf)]++
	if err := m.Errs[symbol]; err != nil {
		return nil, err
	}
	if byTF, ok := m.Bars[symbol]; ok {
		if bars, ok := byTF[tf]; ok {
			if len(bars) > limit {
				bars = bars[len(bars)-limit:]
			}
			return bars, nil
		}
	}
	return GenerateBars(100, limit, tf), nil
}

// GenerateBars builds a mildly trending synthetic series ending now.
func GenerateBars(basePrice float64, count int, tf model.Timeframe) []model.Bar {
	step := 24 * time.Hour
	if tf == model.TimeframeHourly {
		step = time.Hour
	}
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   time.Now().Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
