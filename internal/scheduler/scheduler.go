// Package scheduler triggers scans on a cron schedule and hands the
// resulting report to the output sink.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"TrendScout/internal/report"
	"TrendScout/internal/scanner"
)

// Scheduler owns the cron loop around the scan pipeline.
type Scheduler struct {
	Cron    *cron.Cron
	Scanner *scanner.Scanner
	Sink    report.Sink
	Timeout time.Duration
	Logger  *zap.Logger
	Ctx     context.Context
}

// NewScheduler creates a Scheduler. timeout bounds each run so a scan never
// bleeds into the next scheduling interval.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, sink report.Sink, timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Scanner: sc,
		Sink:    sink,
		Timeout: timeout,
		Logger:  logger,
		Ctx:     ctx,
	}
}

// Register registers the scan task.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.runScan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes a scan immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runScan()
}

func (s *Scheduler) runScan() {
	runAt := time.Now()
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	findings, summary, err := s.Scanner.Run(ctx)
	if err != nil {
		s.Logger.Error("scan aborted", zap.Error(err))
		return
	}

	rep := report.Assemble(findings, runAt)

	// The report is already computed; publishing retries on its own
	// without re-running the scan.
	location, err := s.publishWithRetry(ctx, rep, 3)
	if err != nil {
		s.Logger.Error("publish failed", zap.Error(err), zap.String("sink", s.Sink.Name()))
		return
	}
	s.Logger.Info("report published",
		zap.String("location", location),
		zap.Int("rows", len(rep.Rows)),
		zap.Int("skipped", len(summary.Skipped)))
}

func (s *Scheduler) publishWithRetry(ctx context.Context, rep *report.Report, maxRetries int) (string, error) {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		location, err := s.Sink.Publish(ctx, rep)
		if err == nil {
			return location, nil
		}
		lastErr = err
		backoff := time.Duration(1<<uint(i)) * time.Second
		s.Logger.Warn("publish attempt failed",
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("all %d publish attempts exhausted: %w", maxRetries+1, lastErr)
}
