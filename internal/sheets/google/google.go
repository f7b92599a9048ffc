// Package google exports tour settlement reports to a Google spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "tourbook/internal/sheets"
	"tourbook/internal/settlement"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client from service account or OAuth client JSON.
func New(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		sheetName = "Tours"
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing Google credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// WriteReport writes one summary row per tour, keyed by tour ID in column
// A. An existing row for the tour is overwritten in place.
func (c *Client) WriteReport(ctx context.Context, report *settlement.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, report.TourID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.idColumnRange()).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
		}
		row = len(resp.Values) + 1
	}

	rng := fmt.Sprintf("%s!A%d:K%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{reportRow(report)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.sheetName, err)
	}

	return rng, nil
}

// DeleteReport clears the row holding this tour. Absent tours are a no-op.
func (c *Client) DeleteReport(ctx context.Context, tourID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, tourID)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:K%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row in sheet %s: %w", c.sheetName, err)
	}
	return nil
}

// findRow returns the 1-based row holding tourID in column A, 0 when absent.
func (c *Client) findRow(ctx context.Context, tourID string) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.idColumnRange()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ID column in sheet %s: %w", c.sheetName, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == tourID {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) idColumnRange() string {
	return fmt.Sprintf("%s!A:A", c.sheetName)
}

func reportRow(r *settlement.Report) []any {
	return []any{
		r.TourID,
		r.TourName,
		string(r.Status),
		r.Currency,
		r.TotalBudget.Units(),
		r.TotalExpense.Units(),
		r.Remaining.Units(),
		r.PerHeadBudget.Units(),
		r.PerHeadActual.Units(),
		len(r.Members),
		time.Now().UTC().Format(time.RFC3339),
	}
}
