// Package report turns scan findings into a tabular report and publishes it
// through an output sink.
package report

import (
	"fmt"
	"sort"
	"time"

	"TrendScout/internal/model"
)

// Columns is the fixed column order of every report.
var Columns = []string{
	"Symbol",
	"Name",
	"Daily Status",
	"Daily Short MA",
	"Daily Long MA",
	"Daily Cross Date",
	"Hourly Status",
	"Hourly Short MA",
	"Hourly Long MA",
	"Hourly Cross Date",
	"Fetched At",
}

// Report is the tabular payload handed to a sink. Rows are ordered
// ascending by symbol regardless of pipeline completion order.
type Report struct {
	Title   string
	RunAt   time.Time
	Columns []string
	Rows    [][]string
}

// Assemble builds a report from the findings of one run. An empty findings
// list yields a valid zero-row report.
func Assemble(findings []model.ScanFinding, runAt time.Time) *Report {
	sorted := make([]model.ScanFinding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	rows := make([][]string, 0, len(sorted))
	for _, f := range sorted {
		rows = append(rows, []string{
			f.Symbol,
			f.Name,
			string(f.Daily.State),
			fmt.Sprintf("%.2f", f.Daily.ShortMA),
			fmt.Sprintf("%.2f", f.Daily.LongMA),
			formatCrossDate(f.Daily.LastCrossAt, "2006-01-02"),
			string(f.Hourly.State),
			fmt.Sprintf("%.2f", f.Hourly.ShortMA),
			fmt.Sprintf("%.2f", f.Hourly.LongMA),
			formatCrossDate(f.Hourly.LastCrossAt, "2006-01-02 15:04"),
			f.FetchedAt.Format("2006-01-02 15:04"),
		})
	}

	return &Report{
		Title:   fmt.Sprintf("Golden Cross Scan | %s", runAt.Format("2006-01-02 15:04")),
		RunAt:   runAt,
		Columns: Columns,
		Rows:    rows,
	}
}

func formatCrossDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(layout)
}
