// Package api provides the REST client for the Yahoo Finance chart endpoint.
//
// Endpoint:
//   - GET {base}/v8/finance/chart/{symbol}?period1=&period2=&interval=1d&events=history&includeAdjustedClose=true
//
// Production base URL: https://query1.finance.yahoo.com
//
// Responses carry parallel arrays (timestamp, close, adjclose); null entries mark
// days without a print and are returned as missing observations.
package api
