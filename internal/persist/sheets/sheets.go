// Package sheets mirrors an owner's ledger to a Google Spreadsheet. It is an
// export target only: the sync worker calls Save after processing a batch of
// sync messages, and nothing ever reads the sheet back.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fiscus/internal/core"
	"fiscus/internal/persist"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ persist.Saver = (*Exporter)(nil)

// NewFromEnv creates an Exporter using environment variables.
// Required: SHEETS_SPREADSHEET_ID plus service account credentials in one of
// SHEETS_SERVICE_ACCOUNT_JSON, SHEETS_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: SHEETS_SHEET_NAME (default
// "Transactions").
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("SHEETS_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing SHEETS_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("SHEETS_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("SHEETS_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("SHEETS_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set SHEETS_SERVICE_ACCOUNT_JSON, SHEETS_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// Save replaces the owner's rows on the shared sheet: existing rows are read
// back, rows belonging to other owners are kept in place, and the owner's
// block is rewritten from the given transactions. The range is cleared before
// the write so deletions and shrinking ledgers propagate.
func (e *Exporter) Save(ctx context.Context, owner string, txs []core.Transaction) error {
	fullRange := fmt.Sprintf("%s!A:G", e.sheetName)

	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, fullRange).
		Context(ctx).Do()
	if err != nil {
		return &core.TransportError{Op: "sheets get", Err: err}
	}

	values := mergeRows(resp.Values, owner, txs)

	_, err = e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, fullRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return &core.TransportError{Op: "sheets clear", Err: err}
	}

	writeRange := fmt.Sprintf("%s!A1", e.sheetName)
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return &core.TransportError{Op: "sheets update", Err: err}
	}

	slog.InfoContext(ctx, "Ledger exported to Google Sheets",
		"owner", owner,
		"rows", len(txs),
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName)

	return nil
}

// ownerColumn is the zero-based index of the Owner cell in a sheet row.
const ownerColumn = 1

func headerRow() []interface{} {
	return []interface{}{"ID", "Owner", "Type", "Amount", "Category", "Date", "Description"}
}

func txRow(tx core.Transaction) []interface{} {
	return []interface{}{
		tx.ID,
		tx.Owner,
		string(tx.Type),
		tx.Amount.String(),
		tx.Category,
		tx.Date.Format("2006-01-02"),
		tx.Description,
	}
}

// mergeRows rebuilds the sheet contents for a per-owner replacement on a
// shared sheet: the header first, then every existing row owned by someone
// else in its current order, then the owner's rows.
func mergeRows(existing [][]interface{}, owner string, txs []core.Transaction) [][]interface{} {
	values := make([][]interface{}, 0, len(existing)+len(txs)+1)
	values = append(values, headerRow())
	for i, row := range existing {
		if i == 0 && len(row) > 0 && fmt.Sprint(row[0]) == "ID" {
			continue
		}
		if len(row) > ownerColumn && fmt.Sprint(row[ownerColumn]) == owner {
			continue
		}
		values = append(values, row)
	}
	for _, tx := range txs {
		values = append(values, txRow(tx))
	}
	return values
}
