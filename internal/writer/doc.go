// Package writer implements the Persistence Writer component.
//
// The writer:
//   - Replaces atomic destinations (file, S3 object, Postgres) in one write
//   - Splits chunked destinations (spreadsheets) into ordered row chunks
//   - Retries transient failures with exponential backoff
//   - Clears a chunked destination's stale tail once, after the first chunk lands
//   - Saves the full table to a local fallback file when the destination fails
//
// Records are the header row followed by one row per date, so record 0 is
// the header and chunk offsets count it.
package writer
