// Package pipeline runs one sync: load tickers, validate symbols, read the
// stored history, fetch fresh closes, merge and persist.
package pipeline
