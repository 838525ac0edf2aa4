package repository

import (
	"context"
	"database/sql"
)

// withTx runs fn inside a transaction, rolling back on error. Multi-row
// writes that must land together go through it.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
