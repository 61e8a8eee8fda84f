package calculator

import (
	"fmt"
	"time"

	"TrendScout/internal/model"
)

// DetectCrossover classifies the SMA crossover at the latest bar of the
// series. Bullish means the short SMA is strictly above the long SMA at the
// latest bar while it was at-or-below at the prior bar, i.e. a true crossing
// this bar. Bearish is the mirror. A tie (shortMA == longMA) never counts as
// crossed, so flat data cannot oscillate between signals.
//
// Requires len(series.Bars) >= longWindow+1, otherwise ErrInsufficientData.
func DetectCrossover(series *model.PriceSeries, windows model.WindowPair) (model.Crossover, error) {
	if windows.Short <= 0 || windows.Long <= 0 {
		return model.Crossover{}, fmt.Errorf("windows must be positive, got %d/%d", windows.Short, windows.Long)
	}
	if windows.Short >= windows.Long {
		return model.Crossover{}, fmt.Errorf("short window %d must be below long window %d", windows.Short, windows.Long)
	}
	closes := series.Closes()
	if len(closes) < windows.Long+1 {
		return model.Crossover{}, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(closes), windows.Long+1)
	}

	last := len(closes) - 1
	shortNow, err := SMAAt(closes, windows.Short, last)
	if err != nil {
		return model.Crossover{}, err
	}
	longNow, err := SMAAt(closes, windows.Long, last)
	if err != nil {
		return model.Crossover{}, err
	}
	shortPrev, err := SMAAt(closes, windows.Short, last-1)
	if err != nil {
		return model.Crossover{}, err
	}
	longPrev, err := SMAAt(closes, windows.Long, last-1)
	if err != nil {
		return model.Crossover{}, err
	}

	cross := model.Crossover{
		State:       model.NoSignal,
		ShortMA:     shortNow,
		LongMA:      longNow,
		PrevShortMA: shortPrev,
		PrevLongMA:  longPrev,
	}
	switch {
	case shortNow > longNow && shortPrev <= longPrev:
		cross.State = model.Bullish
	case shortNow < longNow && shortPrev >= longPrev:
		cross.State = model.Bearish
	}
	if at, ok := LastGoldenCross(series, windows); ok {
		cross.LastCrossAt = at
	}
	return cross, nil
}

// LastGoldenCross scans the whole series for the most recent bar where the
// short SMA crossed from at-or-below to strictly above the long SMA, and
// returns that bar's time. ok is false if the series never crossed or is too
// short to evaluate any crossing.
func LastGoldenCross(series *model.PriceSeries, windows model.WindowPair) (time.Time, bool) {
	closes := series.Closes()
	if windows.Short <= 0 || windows.Long <= 0 || windows.Short >= windows.Long {
		return time.Time{}, false
	}
	for i := len(closes) - 1; i >= windows.Long; i-- {
		shortNow, err := SMAAt(closes, windows.Short, i)
		if err != nil {
			return time.Time{}, false
		}
		longNow, err := SMAAt(closes, windows.Long, i)
		if err != nil {
			return time.Time{}, false
		}
		shortPrev, err := SMAAt(closes, windows.Short, i-1)
		if err != nil {
			return time.Time{}, false
		}
		longPrev, err := SMAAt(closes, windows.Long, i-1)
		if err != nil {
			return time.Time{}, false
		}
		if shortNow > longNow && shortPrev <= longPrev {
			return series.Bars[i].Time, true
		}
	}
	return time.Time{}, false
}
