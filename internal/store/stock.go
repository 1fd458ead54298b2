package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/model"
)

// stockColumns is the canonical column list for stock queries. Keep in sync
// with scanStock.
const stockColumns = `id, ja_id, active, item_type, shape, material,
	length, width, thickness, wall_thickness, weight,
	thread_series, thread_handedness, thread_size,
	quantity, location, sub_location,
	purchase_date, purchase_price, purchase_location, vendor, vendor_part,
	notes, original_material, original_thread, date_added, last_modified`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStock(row scanner) (*model.StockRecord, error) {
	r := &model.StockRecord{}
	var (
		itemType, shape                                  string
		threadSeries, threadHandedness, threadSize       sql.NullString
		location, subLocation                            sql.NullString
		purchaseDate                                     sql.NullTime
		purchaseLocation, vendor, vendorPart             sql.NullString
		notes, originalMaterial, originalThread          sql.NullString
	)

	err := row.Scan(
		&r.ID, &r.JAID, &r.Active, &itemType, &shape, &r.Material,
		&r.Length, &r.Width, &r.Thickness, &r.WallThickness, &r.Weight,
		&threadSeries, &threadHandedness, &threadSize,
		&r.Quantity, &location, &subLocation,
		&purchaseDate, &r.PurchasePrice, &purchaseLocation, &vendor, &vendorPart,
		&notes, &originalMaterial, &originalThread, &r.DateAdded, &r.LastModified,
	)
	if err != nil {
		return nil, err
	}

	r.ItemType = model.ItemType(itemType)
	r.Shape = model.Shape(shape)
	r.ThreadSeries = model.ThreadSeries(threadSeries.String)
	r.ThreadHandedness = model.ThreadHandedness(threadHandedness.String)
	r.ThreadSize = threadSize.String
	r.Location = location.String
	r.SubLocation = subLocation.String
	if purchaseDate.Valid {
		t := purchaseDate.Time
		r.PurchaseDate = &t
	}
	r.PurchaseLocation = purchaseLocation.String
	r.Vendor = vendor.String
	r.VendorPart = vendorPart.String
	r.Notes = notes.String
	r.OriginalMaterial = originalMaterial.String
	r.OriginalThread = originalThread.String

	return r, nil
}

func scanStockRows(rows *sql.Rows) ([]model.StockRecord, error) {
	var records []model.StockRecord
	for rows.Next() {
		r, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// nullStr maps "" to NULL for optional text columns.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullDec maps an unset decimal to NULL.
func nullDec(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}

// insertStock inserts a record and returns the new surrogate key. The
// caller has already validated the record; date_added and last_modified are
// assigned by the database.
func insertStock(ctx context.Context, q querier, r *model.StockRecord, active bool) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO stock (ja_id, active, item_type, shape, material,
		    length, width, thickness, wall_thickness, weight,
		    thread_series, thread_handedness, thread_size,
		    quantity, location, sub_location,
		    purchase_date, purchase_price, purchase_location, vendor, vendor_part,
		    notes, original_material, original_thread)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.JAID, active, string(r.ItemType), string(r.Shape), r.Material,
		nullDec(r.Length), nullDec(r.Width), nullDec(r.Thickness),
		nullDec(r.WallThickness), nullDec(r.Weight),
		nullStr(string(r.ThreadSeries)), nullStr(string(r.ThreadHandedness)), nullStr(r.ThreadSize),
		r.Quantity, nullStr(r.Location), nullStr(r.SubLocation),
		r.PurchaseDate, nullDec(r.PurchasePrice), nullStr(r.PurchaseLocation),
		nullStr(r.Vendor), nullStr(r.VendorPart),
		nullStr(r.Notes), nullStr(r.OriginalMaterial), nullStr(r.OriginalThread),
	)
	if err != nil {
		return 0, mapConstraintErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting record id: %w", err)
	}
	return id, nil
}

// getStockByID returns one record by surrogate key, from either a DB or an
// open transaction.
func getStockByID(ctx context.Context, q querier, id int64) (*model.StockRecord, error) {
	r, err := scanStock(q.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting record %d: %w", id, err)
	}
	return r, nil
}

// GetActive returns the unique active record for a JA ID. Observing more
// than one active record means the storage invariant is broken and is
// reported as an integrity violation, not a result.
func GetActive(ctx context.Context, db querier, jaID string) (*model.StockRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE ja_id = ? AND active = 1`, jaID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting active record: %w", err)
	}
	defer rows.Close()

	records, err := scanStockRows(rows)
	if err != nil {
		return nil, fmt.Errorf("getting active record: %w", err)
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%s: %w", jaID, ErrNotFound)
	case 1:
		return &records[0], nil
	default:
		return nil, fmt.Errorf("%w: %d active records for %s", ErrIntegrityViolation, len(records), jaID)
	}
}

// ListActive returns every active record, one per JA ID, ordered by JA ID.
func ListActive(ctx context.Context, db querier) ([]model.StockRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE active = 1 ORDER BY ja_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active records: %w", err)
	}
	defer rows.Close()

	return scanStockRows(rows)
}

// ExistsActive reports whether a JA ID currently has an active record.
func ExistsActive(ctx context.Context, db querier, jaID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM stock WHERE ja_id = ? AND active = 1 LIMIT 1`, jaID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking active record: %w", err)
	}
	return true, nil
}

// History returns every record for a JA ID, oldest first. Ties on
// date_added (second resolution) are broken by insertion order, which for an
// append-only table matches chronology.
func History(ctx context.Context, db querier, jaID string) ([]model.StockRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE ja_id = ? ORDER BY date_added, id`, jaID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting history: %w", err)
	}
	defer rows.Close()

	records, err := scanStockRows(rows)
	if err != nil {
		return nil, fmt.Errorf("getting history: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", jaID, ErrNotFound)
	}
	return records, nil
}
