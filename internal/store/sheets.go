package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"rsvp-harvester-go/internal/config"
)

// SheetsStore implements RowStore on top of a Google Sheets spreadsheet
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsStore creates a Sheets-backed row store using the same OAuth2
// refresh-token credentials as the mailbox client
func NewSheetsStore(ctx context.Context, creds *config.GmailConfig, cfg *config.SheetsConfig) (*SheetsStore, error) {
	oauth2Config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{sheets.SpreadsheetsScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: creds.RefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &SheetsStore{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// EnsureHeader writes the header row if the first row is empty
func (s *SheetsStore) EnsureHeader(ctx context.Context, header []string) error {
	headerRange := fmt.Sprintf("%s!1:1", s.sheetName)

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	return nil
}

// ReadColumn returns the given column of every data row, skipping the
// header by starting the range at row 2
func (s *SheetsStore) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := columnLetter(col)
	readRange := fmt.Sprintf("%s!%s2:%s", s.sheetName, letter, letter)

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s: %w", letter, err)
	}

	values := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) > 0 {
			values = append(values, fmt.Sprint(row[0]))
		} else {
			values = append(values, "")
		}
	}

	return values, nil
}

// AppendRow appends one row after the existing table
func (s *SheetsStore) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	return nil
}

// columnLetter converts a zero-based column index to its A1 notation letter
func columnLetter(col int) string {
	letter := ""
	for col >= 0 {
		letter = string(rune('A'+col%26)) + letter
		col = col/26 - 1
	}
	return letter
}
