package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/db"
	"github.com/evanmh/stocktrack/internal/model"
)

func dec(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// testRecord builds a valid round steel bar for tests.
func testRecord(jaID string) *model.StockRecord {
	return &model.StockRecord{
		JAID:     jaID,
		ItemType: model.ItemTypeBar,
		Shape:    model.ShapeRound,
		Material: "4140",
		Length:   dec("600"),
		Width:    dec("25.4"),
		Weight:   dec("2.38"),
		Quantity: 1,
		Location: "Rack A",
		Notes:    "initial stock",
	}
}

func TestCreateAndGetActive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, err := CreateStock(ctx, database, testRecord("JA000001"))
	if err != nil {
		t.Fatalf("CreateStock: %v", err)
	}
	if !created.Active {
		t.Error("expected new record to be active")
	}
	if created.DateAdded.IsZero() || created.LastModified.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := GetActive(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, got.ID)
	}
	if !got.Length.Decimal.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expected length 600, got %s", got.Length.Decimal)
	}
	if got.Material != "4140" {
		t.Errorf("expected material '4140', got %q", got.Material)
	}
}

func TestCreateRejectsBadJAID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"", "JA1", "ja000001", "JAX00001", "JA0000001"} {
		r := testRecord("JA000001")
		r.JAID = id
		if _, err := CreateStock(ctx, database, r); !IsInvalidInput(err) {
			t.Errorf("JA ID %q: expected invalid input, got %v", id, err)
		}
	}
}

func TestCreateConflictOnActiveDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateStock(ctx, database, testRecord("JA000001")); err != nil {
		t.Fatalf("CreateStock: %v", err)
	}
	_, err := CreateStock(ctx, database, testRecord("JA000001"))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// A deactivated record frees the ID for a fresh create.
	if err := DeactivateStock(ctx, database, "JA000001"); err != nil {
		t.Fatalf("DeactivateStock: %v", err)
	}
	if _, err := CreateStock(ctx, database, testRecord("JA000001")); err != nil {
		t.Errorf("expected create after deactivate to succeed, got %v", err)
	}
}

func TestGetActiveNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetActive(context.Background(), database, "JA999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveOrderedByJAID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"JA000003", "JA000001", "JA000002"} {
		if _, err := CreateStock(ctx, database, testRecord(id)); err != nil {
			t.Fatalf("CreateStock %s: %v", id, err)
		}
	}
	DeactivateStock(ctx, database, "JA000002")

	records, err := ListActive(ctx, database)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 active records, got %d", len(records))
	}
	if records[0].JAID != "JA000001" || records[1].JAID != "JA000003" {
		t.Errorf("expected JA ID order, got %s, %s", records[0].JAID, records[1].JAID)
	}
}

func TestExistsActive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	exists, err := ExistsActive(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("ExistsActive: %v", err)
	}
	if !exists {
		t.Error("expected JA000001 to exist")
	}

	exists, err = ExistsActive(ctx, database, "JA000002")
	if err != nil {
		t.Fatalf("ExistsActive: %v", err)
	}
	if exists {
		t.Error("expected JA000002 to not exist")
	}
}

func TestUpdateStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreateStock(ctx, database, testRecord("JA000001"))

	r := testRecord("JA000001")
	r.Location = "Rack B"
	r.Quantity = 3
	updated, err := UpdateStock(ctx, database, r)
	if err != nil {
		t.Fatalf("UpdateStock: %v", err)
	}
	if updated.Location != "Rack B" || updated.Quantity != 3 {
		t.Errorf("expected updated fields, got location=%q quantity=%d", updated.Location, updated.Quantity)
	}
	if updated.ID != created.ID {
		t.Error("update must edit the row in place, not create a new one")
	}
	if !updated.DateAdded.Equal(created.DateAdded) {
		t.Error("update must not change date_added")
	}

	// In-place edit leaves no history behind.
	history, _ := History(ctx, database, "JA000001")
	if len(history) != 1 {
		t.Errorf("expected history of 1 after update, got %d", len(history))
	}
}

func TestUpdateStockNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := UpdateStock(context.Background(), database, testRecord("JA000001"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCannotResurrectInactive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))
	DeactivateStock(ctx, database, "JA000001")

	// Update targets the active row only; with none, it reports not found
	// rather than touching the retired row.
	_, err := UpdateStock(ctx, database, testRecord("JA000001"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	history, _ := History(ctx, database, "JA000001")
	if history[0].Active {
		t.Error("retired record must stay inactive")
	}
}

func TestActivateDeactivate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	if err := DeactivateStock(ctx, database, "JA000001"); err != nil {
		t.Fatalf("DeactivateStock: %v", err)
	}
	if err := DeactivateStock(ctx, database, "JA000001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double deactivate, got %v", err)
	}

	record, err := ActivateStock(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("ActivateStock: %v", err)
	}
	if !record.Active {
		t.Error("expected reactivated record to be active")
	}

	// Activating with an active record present violates the invariant.
	if _, err := ActivateStock(ctx, database, "JA000001"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestActivateMostRecentInactive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))
	ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("400"), cutTime(), "")
	ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("200"), cutTime(), "")
	DeactivateStock(ctx, database, "JA000001")

	// Three inactive rows now; activation picks the newest (length 200).
	record, err := ActivateStock(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("ActivateStock: %v", err)
	}
	if !record.Length.Decimal.Equal(decimal.RequireFromString("200")) {
		t.Errorf("expected newest record (length 200) activated, got %s", record.Length.Decimal)
	}
}

func TestActivateNothingToActivate(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := ActivateStock(context.Background(), database, "JA000001")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := History(context.Background(), database, "JA999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSchemaRejectsDirectInvariantViolation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	// A write path that bypasses application checks still cannot produce a
	// second active record: the partial unique index rejects it.
	_, err := insertStock(ctx, database, testRecord("JA000001"), true)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict from partial unique index, got %v", err)
	}
}

func TestSchemaRejectsNonPositiveDimensions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	r := testRecord("JA000001")
	r.Length = dec("-5")
	_, err := insertStock(ctx, database, r, true)
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Errorf("expected ErrIntegrityViolation from check constraint, got %v", err)
	}

	r = testRecord("JA000002")
	r.Quantity = 0
	_, err = insertStock(ctx, database, r, true)
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Errorf("expected ErrIntegrityViolation for zero quantity, got %v", err)
	}
}

func TestSchemaRejectsMalformedJAID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	r := testRecord("JA000001")
	r.JAID = "XX-BAD-1"
	_, err := insertStock(ctx, database, r, true)
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Errorf("expected ErrIntegrityViolation from format constraint, got %v", err)
	}
}
