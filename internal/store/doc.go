// Package store reads and writes the persisted price history.
//
// Backends:
//   - File: local CSV, replaced atomically
//   - Object: one CSV object in an S3-compatible bucket
//   - Postgres: long-format rows replaced in one transaction
//   - Sheet: a spreadsheet tab written in row chunks
//
// Every backend reads into a table.Table. A missing, empty or malformed
// store is reported through Prior rather than as an error.
package store
