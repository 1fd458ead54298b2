package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// getOrInitSetting returns the stored value for key, initializing it with
// candidate if absent. INSERT OR IGNORE plus a re-read keeps concurrent
// first-time startups from racing each other.
func getOrInitSetting(ctx context.Context, db *sql.DB, key, candidate string) (string, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, candidate,
	); err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	var value string
	if err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value); err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}

// GetJWTSecret returns the persisted token-signing secret, generating one
// on first run.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return getOrInitSetting(ctx, db, "jwt_secret", hex.EncodeToString(buf))
}
