package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// dsnPragmas is appended to every DSN so the pragmas apply to each
// connection the pool opens, not only the one that happens to run a
// setup statement.
const dsnPragmas = "_pragma=journal_mode(WAL)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=synchronous(NORMAL)"

// Open opens a SQLite database with WAL journaling, a busy timeout, and
// foreign keys enforced on every pooled connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?"+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}
