package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// The stock table is append-only in normal operation: each row is one
// physical state of an item, and all rows sharing a ja_id form that item's
// history. The partial unique index guarantees at most one active row per
// ja_id at the storage level, so a buggy write path cannot end up with two
// "current" states for the same item.
const schema = `
CREATE TABLE IF NOT EXISTS stock (
    id                INTEGER PRIMARY KEY,
    ja_id             TEXT NOT NULL CHECK (ja_id GLOB '[A-Z][A-Z][0-9][0-9][0-9][0-9][0-9][0-9]'),
    active            INTEGER NOT NULL DEFAULT 1 CHECK (active IN (0, 1)),
    item_type         TEXT NOT NULL,
    shape             TEXT NOT NULL,
    material          TEXT NOT NULL,
    length            NUMERIC CHECK (length IS NULL OR length > 0),
    width             NUMERIC CHECK (width IS NULL OR width > 0),
    thickness         NUMERIC CHECK (thickness IS NULL OR thickness > 0),
    wall_thickness    NUMERIC CHECK (wall_thickness IS NULL OR wall_thickness > 0),
    weight            NUMERIC CHECK (weight IS NULL OR weight > 0),
    thread_series     TEXT,
    thread_handedness TEXT,
    thread_size       TEXT,
    quantity          INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
    location          TEXT,
    sub_location      TEXT,
    purchase_date     DATETIME,
    purchase_price    NUMERIC CHECK (purchase_price IS NULL OR purchase_price >= 0),
    purchase_location TEXT,
    vendor            TEXT,
    vendor_part       TEXT,
    notes             TEXT,
    original_material TEXT,
    original_thread   TEXT,
    date_added        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_modified     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_stock_ja_id_active
    ON stock(ja_id) WHERE active = 1;

CREATE INDEX IF NOT EXISTS idx_stock_ja_id ON stock(ja_id);

CREATE TABLE IF NOT EXISTS photos (
    id         TEXT PRIMARY KEY,
    ja_id      TEXT NOT NULL,
    content    BLOB NOT NULL,
    thumbnail  BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_photos_ja_id ON photos(ja_id);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
