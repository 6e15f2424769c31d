package gsheet

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Values is the part of the values API the pipeline uses.
type Values interface {
	// Get returns the cells of a range as text. Trailing empty cells and
	// rows are omitted by the API.
	Get(ctx context.Context, spreadsheetID, a1 string) ([][]string, error)

	// Update writes rows starting at the top-left cell of a1.
	Update(ctx context.Context, spreadsheetID, a1 string, rows [][]any) error

	// Clear empties a range without deleting it.
	Clear(ctx context.Context, spreadsheetID, a1 string) error

	// Columns returns the grid column count of a tab, used or not.
	Columns(ctx context.Context, spreadsheetID, tab string) (int, error)
}

// NewService builds a Sheets service from service-account credentials.
// Extra options are applied after the credentials.
func NewService(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*sheets.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	opts = append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Client implements Values over a Sheets service.
type Client struct {
	svc    *sheets.Service
	logger *slog.Logger
}

// New wraps a Sheets service.
func New(svc *sheets.Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{svc: svc, logger: logger}
}

// Get reads numbers unformatted so stored prices come back at full
// precision, and dates as their displayed text.
func (c *Client) Get(ctx context.Context, spreadsheetID, a1 string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, a1).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", a1, err)
	}

	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = cellText(v)
		}
	}

	c.logger.Debug("sheet values read", "range", a1, "rows", len(out))
	return out, nil
}

// Update writes rows with RAW input so text is never reinterpreted.
func (c *Client) Update(ctx context.Context, spreadsheetID, a1 string, rows [][]any) error {
	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         rows,
	}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, a1, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", a1, err)
	}

	c.logger.Debug("sheet values written", "range", a1, "rows", len(rows))
	return nil
}

func (c *Client) Clear(ctx context.Context, spreadsheetID, a1 string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(spreadsheetID, a1, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", a1, err)
	}

	c.logger.Debug("sheet values cleared", "range", a1)
	return nil
}

// Columns reads the tab's grid properties. The count covers every column
// of the grid, including ones a values read trims as empty.
func (c *Client) Columns(ctx context.Context, spreadsheetID, tab string) (int, error) {
	if tab == "" {
		tab = DefaultTab
	}
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("get properties of %s: %w", tab, err)
	}

	for _, sh := range resp.Sheets {
		if sh.Properties == nil || sh.Properties.Title != tab {
			continue
		}
		if sh.Properties.GridProperties == nil {
			return 0, nil
		}
		return int(sh.Properties.GridProperties.ColumnCount), nil
	}
	return 0, fmt.Errorf("tab %q not found in %s", tab, spreadsheetID)
}

// cellText renders a decoded JSON cell value.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
