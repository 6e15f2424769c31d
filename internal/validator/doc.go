// Package validator implements the Symbol Validator component.
//
// The Symbol Validator:
//   - Probes each symbol with the provider's smallest query
//   - Keeps symbols whose probe returns at least one observation
//   - Logs and drops the rest without failing the batch
//   - Preserves input order regardless of probe concurrency
package validator
