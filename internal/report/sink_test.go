package report

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"testing"
	"time"

	"TrendScout/internal/model"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	runAt := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	findings := []model.ScanFinding{{
		Symbol:    "AAPL",
		Name:      "Apple",
		Daily:     model.Crossover{State: model.Bullish, ShortMA: 210.5, LongMA: 205.1, LastCrossAt: runAt.AddDate(0, 0, -1)},
		Hourly:    model.Crossover{State: model.NoSignal, ShortMA: 211.0, LongMA: 211.2},
		FetchedAt: runAt,
	}}
	return Assemble(findings, runAt)
}

func TestCSVSink_Publish(t *testing.T) {
	dir := t.TempDir()
	sink := NewCSVSink(dir)

	location, err := sink.Publish(context.Background(), sampleReport(t))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	f, err := os.Open(location)
	if err != nil {
		t.Fatalf("open published file: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read published csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "Symbol" {
		t.Errorf("expected Symbol header first, got %s", records[0][0])
	}
	if records[1][0] != "AAPL" {
		t.Errorf("expected AAPL row, got %s", records[1][0])
	}
}

func TestCSVSink_BadDirectory(t *testing.T) {
	sink := NewCSVSink("/proc/definitely/not/writable")
	_, err := sink.Publish(context.Background(), sampleReport(t))
	var sinkErr *SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("expected SinkError, got %v", err)
	}
	if sinkErr.Sink != "csv" {
		t.Errorf("expected sink name csv, got %s", sinkErr.Sink)
	}
}

func TestSQLiteSink_Publish(t *testing.T) {
	path := t.TempDir() + "/reports.db"
	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer sink.Close()

	rep := sampleReport(t)
	location, err := sink.Publish(context.Background(), rep)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if location == "" {
		t.Error("expected a location for the published report")
	}

	var reports, rows int
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM scan_reports").Scan(&reports); err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM scan_rows").Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if reports != 1 {
		t.Errorf("expected 1 report, got %d", reports)
	}
	if rows != len(rep.Rows) {
		t.Errorf("expected %d rows, got %d", len(rep.Rows), rows)
	}

	var symbol string
	if err := sink.db.QueryRow("SELECT symbol FROM scan_rows LIMIT 1").Scan(&symbol); err != nil {
		t.Fatalf("read row back: %v", err)
	}
	if symbol != "AAPL" {
		t.Errorf("expected AAPL, got %s", symbol)
	}
}

func TestSQLiteSink_RepublishKeepsBothReports(t *testing.T) {
	path := t.TempDir() + "/reports.db"
	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer sink.Close()

	rep := sampleReport(t)
	if _, err := sink.Publish(context.Background(), rep); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if _, err := sink.Publish(context.Background(), rep); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	var reports int
	if err := sink.db.QueryRow("SELECT COUNT(*) FROM scan_reports").Scan(&reports); err != nil {
		t.Fatalf("count reports: %v", err)
	}
	if reports != 2 {
		t.Errorf("republish must append a new report, got %d", reports)
	}
}
