// Package provider fetches daily adjusted closes from a market-data vendor
// and assembles them into a dated table with one column per symbol.
package provider
