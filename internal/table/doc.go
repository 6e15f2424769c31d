// Package table implements the dated close-price table and the merge rules
// used to combine a stored history with a freshly fetched batch.
//
// A Table is keyed by calendar date (civil.Date, no time of day, no zone) and
// holds one column per symbol. Cells are optional decimals: a missing
// observation is explicit and renders as an empty string, never as zero.
//
// Serialized form (CSV files, spreadsheet tabs, S3 objects):
//
//	Date,AAPL,BRK-B
//	2024-01-02,185.64,362.5
//	2024-01-03,184.25,
package table
