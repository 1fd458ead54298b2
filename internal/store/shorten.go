package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/model"
)

// ShortenResult reports the outcome of a shortening for audit callers: the
// retired record as it was before the cut and the new active record.
type ShortenResult struct {
	Previous  *model.StockRecord `json:"previous"`
	Record    *model.StockRecord `json:"record"`
	OldLength decimal.Decimal    `json:"old_length"`
	NewLength decimal.Decimal    `json:"new_length"`
}

// ShortenStock performs the irreversible cut of a stock item: the current
// active record is retired and a new active record with the reduced length
// is appended to the item's history, all in one transaction. The JA ID is
// deliberately reused so one ID follows one lineage of decreasing length.
//
// The new record copies every field from the old one except: length becomes
// newLength, weight is cleared (mass is invalidated by cutting and must be
// re-measured), quantity resets to 1 (a shortened piece is a single new
// unit), and notes are replaced with a generated provenance string that
// carries the caller's notes and the previous notes along.
//
// If anything fails, the transaction rolls back: the old record stays
// active and no new record exists.
func ShortenStock(ctx context.Context, db *sql.DB, jaID string, newLength decimal.Decimal, cutDate time.Time, notes string) (*ShortenResult, error) {
	if newLength.Sign() <= 0 {
		return nil, &InvalidInputError{Field: "length", Reason: "new length must be positive"}
	}
	if cutDate.IsZero() {
		cutDate = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	cur, err := GetActive(ctx, tx, jaID)
	if err != nil {
		return nil, err
	}

	if !cur.Length.Valid {
		return nil, fmt.Errorf("%s has no recorded length: %w", jaID, ErrInvalidState)
	}
	if newLength.GreaterThanOrEqual(cur.Length.Decimal) {
		return nil, &InvalidInputError{
			Field:  "length",
			Reason: fmt.Sprintf("new length %s is not shorter than current length %s", newLength, cur.Length.Decimal),
		}
	}

	// Retire the current record. The guard on active = 1 catches a
	// concurrent shorten that committed after our read: zero rows affected
	// means our snapshot is stale, and we bail out without writing.
	result, err := tx.ExecContext(ctx,
		`UPDATE stock SET active = 0, last_modified = CURRENT_TIMESTAMP
		 WHERE id = ? AND active = 1`, cur.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("retiring record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("retiring record: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s was modified concurrently: %w", jaID, ErrInvalidState)
	}

	next := *cur
	next.Length = decimal.NullDecimal{Decimal: newLength, Valid: true}
	next.Weight = decimal.NullDecimal{}
	next.Quantity = 1
	next.Notes = provenanceNote(cur.Length.Decimal, newLength, cutDate, notes, cur.Notes)

	newID, err := insertStock(ctx, tx, &next, true)
	if err != nil {
		return nil, fmt.Errorf("inserting shortened record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing shorten: %w", mapConstraintErr(err))
	}

	record, err := getStockByID(ctx, db, newID)
	if err != nil {
		return nil, err
	}
	previous, err := getStockByID(ctx, db, cur.ID)
	if err != nil {
		return nil, err
	}

	return &ShortenResult{
		Previous:  previous,
		Record:    record,
		OldLength: cur.Length.Decimal,
		NewLength: newLength,
	}, nil
}

// provenanceNote builds the note for a shortened record. Caller notes and
// the previous record's notes are appended so the full cut lineage stays
// readable on the newest record.
func provenanceNote(oldLength, newLength decimal.Decimal, cutDate time.Time, callerNotes, prevNotes string) string {
	parts := []string{
		fmt.Sprintf("Shortened from %s to %s on %s", oldLength, newLength, cutDate.Format("2006-01-02")),
	}
	if callerNotes != "" {
		parts = append(parts, callerNotes)
	}
	if prevNotes != "" {
		parts = append(parts, prevNotes)
	}
	return strings.Join(parts, " | ")
}
