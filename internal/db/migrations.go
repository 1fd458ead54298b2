package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: history lookups scan by (ja_id, date_added); cover them
	// with a composite index so long item histories don't degrade.
	`CREATE INDEX IF NOT EXISTS idx_stock_ja_id_added
	     ON stock(ja_id, date_added)`,
}

// Migrate ensures the schema exists and applies the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
