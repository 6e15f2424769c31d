// Package tickers loads the ordered ticker list from a CSV file or a
// spreadsheet tab.
package tickers
