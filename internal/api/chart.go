package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ChartOptions selects the window of a chart request. When Range is set
// (e.g. "1d", "5d") it takes precedence over From/To.
type ChartOptions struct {
	From     time.Time
	To       time.Time // exclusive
	Range    string
	Interval string // defaults to "1d"
}

// GetChart fetches the daily series for one symbol.
func (c *Client) GetChart(ctx context.Context, symbol string, opts ChartOptions) (*ChartResult, error) {
	query := url.Values{}

	if opts.Range != "" {
		query.Set("range", opts.Range)
	} else {
		query.Set("period1", strconv.FormatInt(opts.From.Unix(), 10))
		query.Set("period2", strconv.FormatInt(opts.To.Unix(), 10))
	}
	interval := opts.Interval
	if interval == "" {
		interval = "1d"
	}
	query.Set("interval", interval)
	query.Set("events", "history")
	query.Set("includeAdjustedClose", "true")

	var resp ChartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &resp); err != nil {
		return nil, fmt.Errorf("get chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("get chart %s: %s: %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("get chart %s: empty result", symbol)
	}

	return &resp.Chart.Result[0], nil
}
