package postgres

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables and indexes if they do not exist yet.
// Every statement is idempotent, so it is safe to run on each startup.
func EnsureSchema(ctx context.Context, db *DB) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}
