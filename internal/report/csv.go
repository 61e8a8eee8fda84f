package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVSink writes each report to a timestamped CSV file in a directory. It is
// the fallback sink when no spreadsheet credentials are configured.
type CSVSink struct {
	Dir string
}

// NewCSVSink creates a sink writing under dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Publish(_ context.Context, r *Report) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("create report dir: %w", err)}
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("golden_cross_%s.csv", r.RunAt.Format("20060102_1504")))
	f, err := os.Create(path)
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("create report file: %w", err)}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(r.Columns); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("write header: %w", err)}
	}
	if err := w.WriteAll(r.Rows); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("write rows: %w", err)}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("flush report: %w", err)}
	}
	return path, nil
}
