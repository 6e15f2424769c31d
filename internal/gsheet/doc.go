// Package gsheet is a thin client over the Google Sheets values API.
//
// It reads and writes rectangular blocks addressed in A1 notation and
// classifies API errors as transient (rate limits, server faults, network)
// or permanent.
package gsheet
