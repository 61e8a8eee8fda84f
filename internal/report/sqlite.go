package report

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteSink publishes each report into a local SQLite database, one row per
// finding under a report header. Useful when the report is consumed by local
// tooling instead of a spreadsheet.
type SQLiteSink struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteSink opens (or creates) the database and runs migrations.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers can follow along while the scanner writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteSink{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_reports (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at    INTEGER NOT NULL,
			title     TEXT,
			row_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_run_at ON scan_reports(run_at)`,

		`CREATE TABLE IF NOT EXISTS scan_rows (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id         INTEGER NOT NULL REFERENCES scan_reports(id),
			symbol            TEXT,
			name              TEXT,
			daily_status      TEXT,
			daily_short_ma    TEXT,
			daily_long_ma     TEXT,
			daily_cross_date  TEXT,
			hourly_status     TEXT,
			hourly_short_ma   TEXT,
			hourly_long_ma    TEXT,
			hourly_cross_date TEXT,
			fetched_at        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_report ON scan_rows(report_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Publish(ctx context.Context, r *Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scan_reports (run_at, title, row_count) VALUES (?,?,?)`,
		r.RunAt.Unix(), r.Title, len(r.Rows))
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("insert report: %w", err)}
	}
	reportID, err := res.LastInsertId()
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("report id: %w", err)}
	}

	for _, row := range r.Rows {
		if len(row) != len(Columns) {
			return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("row has %d cells, want %d", len(row), len(Columns))}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scan_rows
			(report_id, symbol, name, daily_status, daily_short_ma, daily_long_ma, daily_cross_date,
			 hourly_status, hourly_short_ma, hourly_long_ma, hourly_cross_date, fetched_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			reportID, row[0], row[1], row[2], row[3], row[4], row[5],
			row[6], row[7], row[8], row[9], row[10],
		); err != nil {
			return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("insert row %s: %w", row[0], err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("commit: %w", err)}
	}
	return fmt.Sprintf("sqlite://%s#report=%d", s.path, reportID), nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
