package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"TrendScout/internal/collector"
	"TrendScout/internal/model"
	"TrendScout/internal/report"
	"TrendScout/internal/universe"
)

var testOpts = Options{
	DailyWindows:   model.WindowPair{Short: 2, Long: 3},
	HourlyWindows:  model.WindowPair{Short: 2, Long: 3},
	DailyLookback:  10,
	HourlyLookback: 10,
	MaxConcurrent:  4,
}

// With 2/3 windows: prev short == prev long, then the last bar decides.
var (
	bullishCloses = []float64{10, 10, 10, 13}
	bearishCloses = []float64{10, 10, 10, 7}
	flatCloses    = []float64{10, 10, 10, 10}
)

func barsFromCloses(closes []float64, tf model.Timeframe) []model.Bar {
	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	step := 24 * time.Hour
	if tf == model.TimeframeHourly {
		step = time.Hour
	}
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: base.Add(time.Duration(i) * step), Close: c}
	}
	return bars
}

func setSymbol(m *collector.MockFetcher, symbol string, daily, hourly []float64) {
	m.SetBars(symbol, model.TimeframeDaily, barsFromCloses(daily, model.TimeframeDaily))
	m.SetBars(symbol, model.TimeframeHourly, barsFromCloses(hourly, model.TimeframeHourly))
}

func TestRun_EndToEndScenario(t *testing.T) {
	// A: daily bullish crossing, hourly quiet -> in report with hourly NO_SIGNAL.
	// B: daily bearish -> absent, hourly never fetched.
	// C: daily fetch fails -> absent, counted as a skip, run still succeeds.
	mock := collector.NewMockFetcher()
	setSymbol(mock, "A", bullishCloses, flatCloses)
	setSymbol(mock, "B", bearishCloses, flatCloses)
	mock.FailWith("C", errors.New("connection reset"))

	sc := New(universe.NewStaticSource([]string{"A", "B", "C"}), mock, testOpts, zap.NewNop())
	findings, summary, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Symbol != "A" {
		t.Errorf("expected finding for A, got %s", f.Symbol)
	}
	if f.Daily.State != model.Bullish {
		t.Errorf("expected daily BULLISH, got %s", f.Daily.State)
	}
	if f.Hourly.State != model.NoSignal {
		t.Errorf("expected hourly NO_SIGNAL recorded, got %s", f.Hourly.State)
	}

	if summary.Scanned != 3 {
		t.Errorf("expected 3 scanned, got %d", summary.Scanned)
	}
	if summary.Qualified != 1 {
		t.Errorf("expected 1 qualified, got %d", summary.Qualified)
	}
	if len(summary.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d: %v", len(summary.Skipped), summary.Skipped)
	}
	if summary.Skipped[0].Symbol != "C" {
		t.Errorf("expected skip for C, got %s", summary.Skipped[0].Symbol)
	}
	if !strings.Contains(summary.Skipped[0].Reason, "daily fetch") {
		t.Errorf("skip reason should name the daily fetch, got %q", summary.Skipped[0].Reason)
	}
}

func TestRun_GatingNeverFetchesHourly(t *testing.T) {
	mock := collector.NewMockFetcher()
	setSymbol(mock, "BEAR", bearishCloses, bullishCloses)
	setSymbol(mock, "FLAT", flatCloses, bullishCloses)

	sc := New(universe.NewStaticSource([]string{"BEAR", "FLAT"}), mock, testOpts, zap.NewNop())
	findings, summary, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
	if len(summary.Skipped) != 0 {
		t.Errorf("non-bullish symbols are exclusions, not skips; got %v", summary.Skipped)
	}
	for _, sym := range []string{"BEAR", "FLAT"} {
		if n := mock.CallCount(sym, model.TimeframeHourly); n != 0 {
			t.Errorf("%s: hourly fetched %d times despite non-bullish daily", sym, n)
		}
		if n := mock.CallCount(sym, model.TimeframeDaily); n != 1 {
			t.Errorf("%s: expected exactly 1 daily fetch, got %d", sym, n)
		}
	}
}

func TestRun_HourlyRecordedWhateverItsState(t *testing.T) {
	mock := collector.NewMockFetcher()
	setSymbol(mock, "HB", bullishCloses, bullishCloses)
	setSymbol(mock, "HS", bullishCloses, bearishCloses)

	sc := New(universe.NewStaticSource([]string{"HB", "HS"}), mock, testOpts, zap.NewNop())
	findings, _, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected both daily-bullish symbols in findings, got %d", len(findings))
	}
	states := make(map[string]model.CrossoverState)
	for _, f := range findings {
		states[f.Symbol] = f.Hourly.State
	}
	if states["HB"] != model.Bullish {
		t.Errorf("HB: expected hourly BULLISH, got %s", states["HB"])
	}
	if states["HS"] != model.Bearish {
		t.Errorf("HS: expected hourly BEARISH recorded, got %s", states["HS"])
	}
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	mock := collector.NewMockFetcher()
	symbols := []string{"AA", "BB", "CC", "DD"}
	for _, sym := range symbols {
		setSymbol(mock, sym, bullishCloses, flatCloses)
	}
	mock.FailWith("BB", errors.New("rate limited"))

	sc := New(universe.NewStaticSource(symbols), mock, testOpts, zap.NewNop())
	findings, summary, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range findings {
		got[f.Symbol] = true
	}
	for _, sym := range []string{"AA", "CC", "DD"} {
		if !got[sym] {
			t.Errorf("%s missing from findings despite BB's failure", sym)
		}
	}
	if got["BB"] {
		t.Error("BB should not appear in findings")
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0].Symbol != "BB" {
		t.Errorf("expected exactly BB skipped, got %v", summary.Skipped)
	}
}

func TestRun_InsufficientBarsSkips(t *testing.T) {
	mock := collector.NewMockFetcher()
	mock.SetBars("SHORT", model.TimeframeDaily, barsFromCloses([]float64{10, 11, 12}, model.TimeframeDaily))

	sc := New(universe.NewStaticSource([]string{"SHORT"}), mock, testOpts, zap.NewNop())
	findings, summary, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
	if len(summary.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %v", summary.Skipped)
	}
	if !strings.Contains(summary.Skipped[0].Reason, "bars") {
		t.Errorf("skip reason should mention the bar count, got %q", summary.Skipped[0].Reason)
	}
}

func TestRun_IdempotentOnFrozenInput(t *testing.T) {
	mock := collector.NewMockFetcher()
	setSymbol(mock, "ZZ", bullishCloses, flatCloses)
	setSymbol(mock, "MM", bullishCloses, bullishCloses)
	setSymbol(mock, "AA", bullishCloses, bearishCloses)

	sc := New(universe.NewStaticSource([]string{"ZZ", "MM", "AA"}), mock, testOpts, zap.NewNop())

	runAt := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	first, _, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, _, err := sc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	repA := report.Assemble(first, runAt)
	repB := report.Assemble(second, runAt)
	if repA.Title != repB.Title {
		t.Errorf("titles differ: %q vs %q", repA.Title, repB.Title)
	}
	if len(repA.Rows) != len(repB.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(repA.Rows), len(repB.Rows))
	}
	for i := range repA.Rows {
		// The Fetched At column carries the wall-clock retrieval time and
		// is excluded from the comparison.
		for j := 0; j < len(repA.Rows[i])-1; j++ {
			if repA.Rows[i][j] != repB.Rows[i][j] {
				t.Errorf("row %d col %d differs: %q vs %q", i, j, repA.Rows[i][j], repB.Rows[i][j])
			}
		}
	}
}

func TestRun_DeadlineTurnsIntoSkips(t *testing.T) {
	mock := collector.NewMockFetcher()
	symbols := []string{"A", "B", "C"}
	for _, sym := range symbols {
		setSymbol(mock, sym, bullishCloses, flatCloses)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := New(universe.NewStaticSource(symbols), mock, testOpts, zap.NewNop())
	findings, summary, err := sc.Run(ctx)
	if err != nil {
		t.Fatalf("an exceeded deadline must not fail the run: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings after cancellation, got %d", len(findings))
	}
	if len(summary.Skipped) != len(symbols) {
		t.Errorf("expected all %d symbols skipped, got %d", len(symbols), len(summary.Skipped))
	}
	if summary.Scanned != len(symbols) {
		t.Errorf("expected scanned=%d, got %d", len(symbols), summary.Scanned)
	}
}

func TestRun_UniverseFailureIsFatal(t *testing.T) {
	mock := collector.NewMockFetcher()
	sc := New(universe.NewStaticSource(nil), mock, testOpts, zap.NewNop())
	_, _, err := sc.Run(context.Background())
	if !errors.Is(err, universe.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
