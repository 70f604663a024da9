// Package store is the SQLite persistence layer. Decimal values are stored as
// TEXT so that costs and weights round-trip exactly.
package store

import (
	"database/sql"
	"fmt"
)

// Store implements the reader and writer ports of the catalog, formulation,
// production and reporting packages over a single *sql.DB.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for seeding and health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func affectedOne(result sql.Result, op string) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return affected > 0, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func nullableText(v string) any {
	if v == "" {
		return nil
	}
	return v
}
