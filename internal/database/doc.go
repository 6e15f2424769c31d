// Package database opens the PostgreSQL pool used by the postgres store
// backend.
package database
