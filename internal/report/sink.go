package report

import (
	"context"
	"fmt"
)

// Sink publishes a report and returns where it landed (a URL or file path).
// A computed report survives a publish failure; callers may retry Publish
// without re-running the scan.
type Sink interface {
	Publish(ctx context.Context, r *Report) (location string, err error)
	Name() string
}

// SinkError marks a publish failure. It surfaces to the run's caller but
// never discards the report itself.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("publish via %s: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
