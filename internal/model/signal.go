package model

import "time"

// CrossoverState classifies the relationship between the short and long SMA
// at the latest bar relative to the prior bar.
type CrossoverState string

const (
	NoSignal CrossoverState = "NO_SIGNAL"
	Bullish  CrossoverState = "BULLISH"
	Bearish  CrossoverState = "BEARISH"
)

// Crossover is the outcome of one detector run: the classification plus the
// moving-average values it was derived from.
type Crossover struct {
	State       CrossoverState
	ShortMA     float64
	LongMA      float64
	PrevShortMA float64
	PrevLongMA  float64
	// LastCrossAt is the time of the most recent golden cross anywhere in
	// the series, zero if the series never crossed.
	LastCrossAt time.Time
}

// ScanFinding is one qualifying symbol: a bullish daily crossover plus the
// informational hourly check. Immutable once appended to a run's findings.
type ScanFinding struct {
	Symbol    string
	Name      string
	Daily     Crossover
	Hourly    Crossover
	FetchedAt time.Time
}

// SkipReason records why a symbol was excluded from a run.
type SkipReason struct {
	Symbol string
	Reason string
}

// ScanSummary describes a completed run: a run always yields one, even when
// every symbol was skipped.
type ScanSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Scanned    int
	Qualified  int
	Skipped    []SkipReason
}
