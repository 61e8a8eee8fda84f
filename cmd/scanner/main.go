package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"TrendScout/internal/collector"
	"TrendScout/internal/config"
	"TrendScout/internal/report"
	"TrendScout/internal/scanner"
	"TrendScout/internal/scheduler"
	"TrendScout/internal/universe"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger := newLogger(cfg.App.LogLevel)
	defer logger.Sync()
	logger.Info("TrendScout starting")

	// Symbol universe
	var source universe.Source
	switch cfg.Universe.Source {
	case "static":
		source = universe.NewStaticSource(cfg.Universe.Symbols)
	default:
		source = universe.NewWikipediaSource(cfg.Universe.WikipediaURL, cfg.Proxy)
	}
	logger.Info("universe source", zap.String("source", source.Name()))

	// Market data provider
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "polygon":
		fetcher = collector.NewPolygonFetcher(cfg.DataSource.PolygonAPIKey)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Info("data source", zap.String("provider", fetcher.Name()))

	// Output sink
	sink, closeSink, err := buildSink(cfg)
	if err != nil {
		logger.Fatal("init sink", zap.Error(err))
	}
	defer closeSink()
	logger.Info("output sink", zap.String("sink", sink.Name()))

	sc := scanner.New(source, fetcher, scanner.Options{
		DailyWindows:   cfg.Windows.Daily,
		HourlyWindows:  cfg.Windows.Hourly,
		DailyLookback:  cfg.Scan.DailyLookbackBars,
		HourlyLookback: cfg.Scan.HourlyLookbackBars,
		MaxConcurrent:  cfg.Scan.MaxConcurrent,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, sc, sink,
		time.Duration(cfg.Scan.TimeoutMinutes)*time.Minute, logger)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		logger.Fatal("register cron task", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	logger.Info("TrendScout is running")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
}

func buildSink(cfg *config.Config) (report.Sink, func(), error) {
	switch cfg.Sink.Kind {
	case "sheets":
		creds := []byte(os.Getenv("GOOGLE_CREDENTIALS"))
		return report.NewSheetsSink(creds, cfg.Sink.Sheets.SpreadsheetID, cfg.Sink.Sheets.ShareEmail), func() {}, nil
	case "sqlite":
		s, err := report.NewSQLiteSink(cfg.Sink.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return report.NewCSVSink(cfg.Sink.CSVDir), func() {}, nil
	}
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(lvl)
	logCfg.EncoderConfig.TimeKey = "ts"
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := logCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
