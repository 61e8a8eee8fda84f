package calculator

import "errors"

// ErrInsufficientData is returned when a series is too short for the
// requested windows. Callers treat it as a per-symbol skip.
var ErrInsufficientData = errors.New("not enough data for SMA calculation")

// SMAAt computes the simple moving average of the `period` closes ending at
// index `end` (inclusive).
func SMAAt(prices []float64, period, end int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if end+1 < period || end >= len(prices) {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := end - period + 1; i <= end; i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMA computes the simple moving average over the last `period` prices.
func SMA(prices []float64, period int) (float64, error) {
	return SMAAt(prices, period, len(prices)-1)
}
