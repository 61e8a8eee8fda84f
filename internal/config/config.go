package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"TrendScout/internal/model"
)

// Default window pairs. The hourly pair is deliberately a fixed constant
// rather than something inferred from market conventions: intraday noise
// makes 50/200 hourly bars impractical to source, so the scanner uses a
// shorter pair on that timeframe.
const (
	DefaultDailyShort  = 50
	DefaultDailyLong   = 200
	DefaultHourlyShort = 20
	DefaultHourlyLong  = 50
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig      `yaml:"app"`
	Universe   UniverseConfig `yaml:"universe"`
	DataSource DataSource     `yaml:"data_source"`
	Windows    WindowsConfig  `yaml:"windows"`
	Scan       ScanConfig     `yaml:"scan"`
	Schedule   ScheduleConfig `yaml:"schedule"`
	Sink       SinkConfig     `yaml:"sink"`
	Proxy      string         `yaml:"proxy"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	LogLevel string `yaml:"log_level"`
}

// UniverseConfig selects where the symbol universe comes from.
type UniverseConfig struct {
	// Source is "wikipedia" (index constituents page) or "static".
	Source       string   `yaml:"source"`
	WikipediaURL string   `yaml:"wikipedia_url"`
	Symbols      []string `yaml:"symbols"`
}

// DataSource selects the market-data provider.
type DataSource struct {
	// Provider is "yahoo" or "polygon".
	Provider      string `yaml:"provider"`
	PolygonAPIKey string `yaml:"polygon_api_key"`
}

// WindowsConfig fixes the SMA window pair per timeframe.
type WindowsConfig struct {
	Daily  model.WindowPair `yaml:"daily"`
	Hourly model.WindowPair `yaml:"hourly"`
}

// ScanConfig tunes the pipeline fan-out.
type ScanConfig struct {
	// MaxConcurrent bounds in-flight symbol fetches toward the provider.
	MaxConcurrent int `yaml:"max_concurrent"`
	// TimeoutMinutes bounds a whole run; in-flight symbols past the
	// deadline become skips, not a failed run.
	TimeoutMinutes int `yaml:"timeout_minutes"`
	// DailyLookbackBars and HourlyLookbackBars size the fetch so the long
	// window plus one prior bar is always covered.
	DailyLookbackBars  int `yaml:"daily_lookback_bars"`
	HourlyLookbackBars int `yaml:"hourly_lookback_bars"`
}

// ScheduleConfig holds the cron trigger.
type ScheduleConfig struct {
	ScanCron string `yaml:"scan_cron"`
}

// SinkConfig selects and configures the report output sink.
type SinkConfig struct {
	// Kind is "sheets", "csv" or "sqlite".
	Kind   string       `yaml:"kind"`
	Sheets SheetsConfig `yaml:"sheets"`
	CSVDir string       `yaml:"csv_dir"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SheetsConfig configures the Google Sheets sink. Credentials JSON comes
// from the GOOGLE_CREDENTIALS environment variable, never from this file.
type SheetsConfig struct {
	// SpreadsheetID reuses an existing spreadsheet; empty means create one
	// per title and share it with ShareEmail.
	SpreadsheetID string `yaml:"spreadsheet_id"`
	ShareEmail    string `yaml:"share_email"`
}

// SQLiteConfig configures the SQLite sink.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.DataSource.PolygonAPIKey = v
	}
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		cfg.Sink.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("USER_EMAIL"); v != "" {
		cfg.Sink.Sheets.ShareEmail = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.MaxConcurrent = n
		}
	}

	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Universe.Source == "" {
		c.Universe.Source = "wikipedia"
	}
	if c.Universe.WikipediaURL == "" {
		c.Universe.WikipediaURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.Windows.Daily.Short == 0 {
		c.Windows.Daily.Short = DefaultDailyShort
	}
	if c.Windows.Daily.Long == 0 {
		c.Windows.Daily.Long = DefaultDailyLong
	}
	if c.Windows.Hourly.Short == 0 {
		c.Windows.Hourly.Short = DefaultHourlyShort
	}
	if c.Windows.Hourly.Long == 0 {
		c.Windows.Hourly.Long = DefaultHourlyLong
	}
	if c.Scan.MaxConcurrent == 0 {
		c.Scan.MaxConcurrent = 10
	}
	if c.Scan.TimeoutMinutes == 0 {
		c.Scan.TimeoutMinutes = 50
	}
	if c.Scan.DailyLookbackBars == 0 {
		// Two trading years, comfortably past the 200-bar long window.
		c.Scan.DailyLookbackBars = 504
	}
	if c.Scan.HourlyLookbackBars == 0 {
		// One month of regular-session hourly bars.
		c.Scan.HourlyLookbackBars = 160
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 0 * * * *" // hourly, on the hour
	}
	if c.Sink.Kind == "" {
		c.Sink.Kind = "csv"
	}
	if c.Sink.CSVDir == "" {
		c.Sink.CSVDir = "data/reports"
	}
	if c.Sink.SQLite.Path == "" {
		c.Sink.SQLite.Path = "data/trendscout.db"
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Universe.Source {
	case "wikipedia":
	case "static":
		if len(c.Universe.Symbols) == 0 {
			return fmt.Errorf("universe.symbols is required for the static source")
		}
	default:
		return fmt.Errorf("unknown universe source %q", c.Universe.Source)
	}
	switch c.DataSource.Provider {
	case "yahoo":
	case "polygon":
		if c.DataSource.PolygonAPIKey == "" {
			return fmt.Errorf("data_source.polygon_api_key is required for the polygon provider")
		}
	default:
		return fmt.Errorf("unknown data source provider %q", c.DataSource.Provider)
	}
	for _, w := range []struct {
		name string
		pair model.WindowPair
	}{{"daily", c.Windows.Daily}, {"hourly", c.Windows.Hourly}} {
		if w.pair.Short <= 0 || w.pair.Long <= 0 {
			return fmt.Errorf("windows.%s must be positive", w.name)
		}
		if w.pair.Short >= w.pair.Long {
			return fmt.Errorf("windows.%s: short %d must be below long %d", w.name, w.pair.Short, w.pair.Long)
		}
	}
	if c.Scan.DailyLookbackBars < c.Windows.Daily.Long+1 {
		return fmt.Errorf("scan.daily_lookback_bars %d cannot cover the %d-bar long window", c.Scan.DailyLookbackBars, c.Windows.Daily.Long)
	}
	if c.Scan.HourlyLookbackBars < c.Windows.Hourly.Long+1 {
		return fmt.Errorf("scan.hourly_lookback_bars %d cannot cover the %d-bar long window", c.Scan.HourlyLookbackBars, c.Windows.Hourly.Long)
	}
	switch c.Sink.Kind {
	case "csv", "sqlite":
	case "sheets":
		if os.Getenv("GOOGLE_CREDENTIALS") == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS is required for the sheets sink")
		}
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}
	return nil
}
