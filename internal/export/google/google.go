// Package google appends transactions to a Google Sheets backup using a
// service account.
package google

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"finpulse/internal/core"
)

// Env variables the exporter reads when built with NewFromEnv.
const (
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvSpreadsheetID   = "GOOGLE_SPREADSHEET_ID"
	EnvSheetName       = "GOOGLE_SHEET_NAME"
)

// Exporter writes transaction rows to one sheet of one spreadsheet.
type Exporter struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func New(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*Exporter, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewFromEnv builds an exporter from the standard environment variables.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	return New(ctx,
		os.Getenv(EnvCredentialsFile),
		os.Getenv(EnvSpreadsheetID),
		os.Getenv(EnvSheetName))
}

// AppendTransaction appends one row and returns the updated range as the
// export reference. Amounts are written in rupees because the sheet is a
// human-facing backup.
func (e *Exporter) AppendTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	kind := "expense"
	if tx.IsIncome {
		kind = "income"
	}

	row := []any{
		tx.ID,
		tx.Date.ISO(),
		tx.Description,
		core.GetCategoryInfo(tx.Category).Label,
		tx.Amount.Rupees(),
		kind,
		tx.Merchant,
	}

	resp, err := e.svc.Spreadsheets.Values.Append(
		e.spreadsheetID,
		e.sheetName+"!A:G",
		&sheets.ValueRange{Values: [][]any{row}},
	).ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return "", nil
}
