package spreadsheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultRange is read when an import names no range
const DefaultRange = "A1:Z"

// SheetsSource reads rows from Google Sheets with a service account.
type SheetsSource struct {
	service *sheets.Service
}

// NewSheetsSource creates a read-only Sheets client from service-account JSON
func NewSheetsSource(ctx context.Context, credentialsJSON string) (*SheetsSource, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("google sheets credentials not configured")
	}
	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &SheetsSource{service: service}, nil
}

// Rows reads readRange of the spreadsheet; the first row is the header.
func (s *SheetsSource) Rows(ctx context.Context, spreadsheetID, readRange string) (*Table, error) {
	if readRange == "" {
		readRange = DefaultRange
	}
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return FromRecords(stringify(resp.Values)), nil
}

func stringify(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				out[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return out
}
