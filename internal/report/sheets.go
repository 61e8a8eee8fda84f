package report

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink publishes reports to a Google Sheets spreadsheet. With no
// configured spreadsheet ID it creates a master sheet on first publish and
// shares it with the configured account; later runs overwrite the same
// sheet.
type SheetsSink struct {
	creds      []byte
	shareEmail string

	mu            sync.Mutex
	spreadsheetID string
}

// NewSheetsSink creates a sink authenticated with service-account
// credentials JSON. spreadsheetID may be empty.
func NewSheetsSink(credsJSON []byte, spreadsheetID, shareEmail string) *SheetsSink {
	return &SheetsSink{
		creds:         credsJSON,
		spreadsheetID: spreadsheetID,
		shareEmail:    shareEmail,
	}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Publish(ctx context.Context, r *Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(s.creds),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope))
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("init sheets service: %w", err)}
	}

	if s.spreadsheetID == "" {
		if err := s.create(ctx, srv, r.Title); err != nil {
			return "", err
		}
	}

	// Clear then rewrite: each run replaces the previous report wholesale.
	if _, err := srv.Spreadsheets.Values.Clear(s.spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("clear sheet: %w", err)}
	}

	values := make([][]interface{}, 0, len(r.Rows)+2)
	values = append(values, []interface{}{r.Title})
	header := make([]interface{}, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	values = append(values, header)
	for _, row := range r.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		values = append(values, cells)
	}

	_, err = srv.Spreadsheets.Values.
		Update(s.spreadsheetID, "A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return "", &SinkError{Sink: s.Name(), Err: fmt.Errorf("update sheet: %w", err)}
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", s.spreadsheetID), nil
}

func (s *SheetsSink) create(ctx context.Context, srv *sheets.Service, title string) error {
	created, err := srv.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return &SinkError{Sink: s.Name(), Err: fmt.Errorf("create spreadsheet: %w", err)}
	}
	s.spreadsheetID = created.SpreadsheetId

	if s.shareEmail == "" {
		return nil
	}
	driveSrv, err := drive.NewService(ctx,
		option.WithCredentialsJSON(s.creds),
		option.WithScopes(drive.DriveScope))
	if err != nil {
		return &SinkError{Sink: s.Name(), Err: fmt.Errorf("init drive service: %w", err)}
	}
	_, err = driveSrv.Permissions.Create(s.spreadsheetID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: s.shareEmail,
	}).Context(ctx).Do()
	if err != nil {
		return &SinkError{Sink: s.Name(), Err: fmt.Errorf("share spreadsheet with %s: %w", s.shareEmail, err)}
	}
	return nil
}
