package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/evanmh/stocktrack/internal/model"
)

// CreateStock inserts the first (or a fresh) active record for a JA ID.
// Fails with ErrConflict if the JA ID already has an active record.
func CreateStock(ctx context.Context, db *sql.DB, r *model.StockRecord) (*model.StockRecord, error) {
	if !model.ValidJAID(r.JAID) {
		return nil, &InvalidInputError{Field: "ja_id", Reason: fmt.Sprintf("%q is not a valid JA ID", r.JAID)}
	}

	exists, err := ExistsActive(ctx, db, r.JAID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", r.JAID, ErrConflict)
	}

	// The partial unique index still backs this up if a concurrent create
	// slips between the check and the insert.
	id, err := insertStock(ctx, db, r, true)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	return getStockByID(ctx, db, id)
}

// UpdateStock overwrites the mutable fields of the current active record in
// place. This corrects the current state without creating history; it never
// changes the active flag (activation transitions go through Activate,
// Deactivate, and Shorten only) and never changes date_added.
func UpdateStock(ctx context.Context, db *sql.DB, r *model.StockRecord) (*model.StockRecord, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE stock SET
		    item_type = ?, shape = ?, material = ?,
		    length = ?, width = ?, thickness = ?, wall_thickness = ?, weight = ?,
		    thread_series = ?, thread_handedness = ?, thread_size = ?,
		    quantity = ?, location = ?, sub_location = ?,
		    purchase_date = ?, purchase_price = ?, purchase_location = ?,
		    vendor = ?, vendor_part = ?,
		    notes = ?, original_material = ?, original_thread = ?,
		    last_modified = CURRENT_TIMESTAMP
		 WHERE ja_id = ? AND active = 1`,
		string(r.ItemType), string(r.Shape), r.Material,
		nullDec(r.Length), nullDec(r.Width), nullDec(r.Thickness),
		nullDec(r.WallThickness), nullDec(r.Weight),
		nullStr(string(r.ThreadSeries)), nullStr(string(r.ThreadHandedness)), nullStr(r.ThreadSize),
		r.Quantity, nullStr(r.Location), nullStr(r.SubLocation),
		r.PurchaseDate, nullDec(r.PurchasePrice), nullStr(r.PurchaseLocation),
		nullStr(r.Vendor), nullStr(r.VendorPart),
		nullStr(r.Notes), nullStr(r.OriginalMaterial), nullStr(r.OriginalThread),
		r.JAID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", mapConstraintErr(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", r.JAID, ErrNotFound)
	}

	return GetActive(ctx, db, r.JAID)
}

// DeactivateStock flips the current active record to inactive.
func DeactivateStock(ctx context.Context, db *sql.DB, jaID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE stock SET active = 0, last_modified = CURRENT_TIMESTAMP
		 WHERE ja_id = ? AND active = 1`, jaID,
	)
	if err != nil {
		return fmt.Errorf("deactivating record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", jaID, ErrNotFound)
	}
	return nil
}

// ActivateStock re-activates the most recently added inactive record for a
// JA ID. Fails with ErrConflict if an active record already exists, so the
// single-active invariant cannot be bypassed through activation.
func ActivateStock(ctx context.Context, db *sql.DB, jaID string) (*model.StockRecord, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := ExistsActive(ctx, tx, jaID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", jaID, ErrConflict)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM stock WHERE ja_id = ? AND active = 0
		 ORDER BY date_added DESC, id DESC LIMIT 1`, jaID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", jaID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding record to activate: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE stock SET active = 1, last_modified = CURRENT_TIMESTAMP WHERE id = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("activating record: %w", mapConstraintErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing activation: %w", mapConstraintErr(err))
	}

	return getStockByID(ctx, db, id)
}
