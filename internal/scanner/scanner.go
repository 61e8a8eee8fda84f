// Package scanner runs the two-stage golden-cross pipeline across the
// symbol universe.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"TrendScout/internal/calculator"
	"TrendScout/internal/collector"
	"TrendScout/internal/model"
	"TrendScout/internal/universe"
)

// Options tunes one scanner instance. Window pairs are fixed per timeframe;
// MaxConcurrent bounds in-flight fetches toward the data provider.
type Options struct {
	DailyWindows   model.WindowPair
	HourlyWindows  model.WindowPair
	DailyLookback  int
	HourlyLookback int
	MaxConcurrent  int
}

// Scanner fans the per-symbol pipeline out over a bounded worker pool and
// gathers findings. Each symbol's fetch-and-detect sequence shares no state
// with any other symbol's; only the findings accumulation is synchronized.
type Scanner struct {
	source  universe.Source
	fetcher collector.Fetcher
	opts    Options
	logger  *zap.Logger
}

// New creates a Scanner.
func New(source universe.Source, fetcher collector.Fetcher, opts Options, logger *zap.Logger) *Scanner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{source: source, fetcher: fetcher, opts: opts, logger: logger}
}

// result carries one symbol's outcome from a worker to the reducer.
type result struct {
	finding *model.ScanFinding
	skip    *model.SkipReason
}

// Run resolves the universe and evaluates every symbol. A universe failure
// is fatal; per-symbol failures become skip entries in the summary. Run
// always returns a summary alongside the findings unless the universe
// itself was unavailable.
func (s *Scanner) Run(ctx context.Context) ([]model.ScanFinding, *model.ScanSummary, error) {
	startedAt := time.Now()

	members, err := s.source.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve universe from %s: %w", s.source.Name(), err)
	}
	s.logger.Info("universe resolved",
		zap.String("source", s.source.Name()),
		zap.Int("symbols", len(members)))

	jobs := make(chan universe.Constituent)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.MaxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for member := range jobs {
				results <- s.evaluate(ctx, member)
			}
		}()
	}

	// Feed jobs in universe order; a deadline stops the feed and leaves
	// the remaining symbols to be recorded as skips below.
	var dispatched atomic.Int64
	go func() {
		defer close(jobs)
		for _, member := range members {
			select {
			case jobs <- member:
				dispatched.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var findings []model.ScanFinding
	var skipped []model.SkipReason
	for res := range results {
		if res.finding != nil {
			findings = append(findings, *res.finding)
		}
		if res.skip != nil {
			skipped = append(skipped, *res.skip)
		}
	}

	for _, member := range members[int(dispatched.Load()):] {
		skipped = append(skipped, model.SkipReason{
			Symbol: member.Symbol,
			Reason: "run deadline exceeded before fetch",
		})
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Symbol < skipped[j].Symbol })

	summary := &model.ScanSummary{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Scanned:    len(members),
		Qualified:  len(findings),
		Skipped:    skipped,
	}
	s.logger.Info("scan finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("qualified", summary.Qualified),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return findings, summary, nil
}

// evaluate runs the daily check and, only when it is bullish, the hourly
// check. Every failure path maps to a skip; a non-bullish daily result is a
// plain exclusion, not an error.
func (s *Scanner) evaluate(ctx context.Context, member universe.Constituent) result {
	if err := ctx.Err(); err != nil {
		return skip(member.Symbol, "run deadline exceeded before fetch")
	}

	daily, err := collector.FetchSeries(ctx, s.fetcher, member.Symbol,
		model.TimeframeDaily, s.opts.DailyLookback, s.opts.DailyWindows.Long+1)
	if err != nil {
		s.logger.Warn("daily series unavailable", zap.String("symbol", member.Symbol), zap.Error(err))
		return skip(member.Symbol, fmt.Sprintf("daily fetch: %v", err))
	}

	dailyCross, err := calculator.DetectCrossover(daily, s.opts.DailyWindows)
	if err != nil {
		if errors.Is(err, calculator.ErrInsufficientData) {
			s.logger.Warn("daily series too short", zap.String("symbol", member.Symbol), zap.Error(err))
		}
		return skip(member.Symbol, fmt.Sprintf("daily detect: %v", err))
	}
	if dailyCross.State != model.Bullish {
		return result{} // excluded, no error
	}

	// Hourly is checked, not required: the finding is recorded whatever
	// the hourly classification turns out to be.
	hourly, err := collector.FetchSeries(ctx, s.fetcher, member.Symbol,
		model.TimeframeHourly, s.opts.HourlyLookback, s.opts.HourlyWindows.Long+1)
	if err != nil {
		s.logger.Warn("hourly series unavailable", zap.String("symbol", member.Symbol), zap.Error(err))
		return skip(member.Symbol, fmt.Sprintf("hourly fetch: %v", err))
	}
	hourlyCross, err := calculator.DetectCrossover(hourly, s.opts.HourlyWindows)
	if err != nil {
		return skip(member.Symbol, fmt.Sprintf("hourly detect: %v", err))
	}

	s.logger.Info("golden cross found",
		zap.String("symbol", member.Symbol),
		zap.Float64("daily_short_ma", dailyCross.ShortMA),
		zap.Float64("daily_long_ma", dailyCross.LongMA),
		zap.String("hourly_state", string(hourlyCross.State)))

	return result{finding: &model.ScanFinding{
		Symbol:    member.Symbol,
		Name:      member.Name,
		Daily:     dailyCross,
		Hourly:    hourlyCross,
		FetchedAt: daily.FetchedAt,
	}}
}

func skip(symbol, reason string) result {
	return result{skip: &model.SkipReason{Symbol: symbol, Reason: reason}}
}
