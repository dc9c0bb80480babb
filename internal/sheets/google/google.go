// Package google exports transactions to a Google Sheets spreadsheet using
// service-account credentials. One row per transaction, keyed by ID in the
// first column.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	ports "github.com/adarshpathak3408/FinFlow/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.TransactionWriter  = (*Client)(nil)
	_ ports.TransactionDeleter = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet and sheet name.
// Credentials come from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
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
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// Append writes one transaction row and returns the updated range as the
// row reference.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	values := &gsheet.ValueRange{
		Values: [][]any{{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			tx.Amount,
			tx.Description,
		}},
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:F", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append transaction row: %w", err)
	}

	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return "", nil
}

// Delete removes the row whose first column holds transactionID. A missing
// row is not an error: the transaction may never have been exported.
func (c *Client) Delete(ctx context.Context, transactionID string) error {
	rowIndex, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if rowIndex < 0 {
		return nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete transaction row: %w", err)
	}
	return nil
}

// findRow returns the zero-based row index of transactionID in column A,
// or -1 when absent.
func (c *Client) findRow(ctx context.Context, transactionID string) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, c.sheetName+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return -1, fmt.Errorf("read id column: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == transactionID {
			return i, nil
		}
	}
	return -1, nil
}

// sheetID resolves the numeric sheet id for the configured sheet name.
func (c *Client) sheetID(ctx context.Context) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", c.sheetName, c.spreadsheetID)
}
