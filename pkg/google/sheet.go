package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

const (
	// RAW stores cells verbatim: no formulas, ids keep leading zeros.
	valueInputOption = "RAW"
	insertDataOption = "INSERT_ROWS"
)

// Sheet is a single worksheet of a Google spreadsheet.
type Sheet struct {
	srv           *sheets.Service
	spreadsheetID string
	title         string
}

// NewSheetClient creates a Sheet for an already resolved spreadsheet and worksheet title.
func NewSheetClient(srv *sheets.Service, spreadsheetID, title string) *Sheet {
	return &Sheet{srv: srv, spreadsheetID: spreadsheetID, title: title}
}

func (s *Sheet) Title() string { return s.title }

// Rows returns every populated row of the worksheet, header included.
func (s *Sheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, quoteTitle(s.title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read worksheet '%s': %w", s.title, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateCell writes value into the 1-based row and column.
func (s *Sheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := quoteTitle(s.title) + "!" + A1(row, col)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to update %s: %w", rng, err)
	}
	return nil
}

// AppendRow adds values as a new row after the last populated row.
func (s *Sheet) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, quoteTitle(s.title), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to append row to '%s': %w", s.title, err)
	}
	return nil
}

// A1 converts a 1-based row and column into A1 notation, e.g. (10, 27) -> "AA10".
func A1(row, col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return fmt.Sprintf("%s%d", letters, row)
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
