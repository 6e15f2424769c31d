// Package model defines the shared symbol type used across pricesync.
//
// Conventions:
//   - Symbols are stored, displayed and queried in one canonical form: trimmed,
//     with "." replaced by "-" (BRK.B -> BRK-B), the form market-data vendors accept.
//   - Dates are civil dates (see package table); prices are decimals.
package model
