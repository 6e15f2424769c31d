package api

import "encoding/json"

// ChartResponse from GET /v8/finance/chart/{symbol}
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartError is the error envelope returned for unknown or delisted symbols.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult holds one symbol's series.
type ChartResult struct {
	Meta       ChartMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators ChartIndicators `json:"indicators"`
}

// ChartMeta describes the instrument and its exchange.
type ChartMeta struct {
	Symbol               string `json:"symbol"`
	Currency             string `json:"currency"`
	ExchangeName         string `json:"exchangeName"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	GMTOffset            int64  `json:"gmtoffset"` // seconds
	DataGranularity      string `json:"dataGranularity"`
}

// ChartIndicators holds the price arrays, parallel to ChartResult.Timestamp.
// Prices are kept as json.Number so no precision is lost before they are
// converted to decimals; nil entries are days without a print.
type ChartIndicators struct {
	Quote []struct {
		Close []*json.Number `json:"close"`
	} `json:"quote"`
	AdjClose []struct {
		AdjClose []*json.Number `json:"adjclose"`
	} `json:"adjclose"`
}
