package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/db"
)

func cutTime() time.Time {
	return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
}

func TestShortenRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, err := CreateStock(ctx, database, testRecord("JA000001"))
	if err != nil {
		t.Fatalf("CreateStock: %v", err)
	}

	result, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("240"), cutTime(), "cut test")
	if err != nil {
		t.Fatalf("ShortenStock: %v", err)
	}

	// New record: active, shorter, weight cleared, quantity reset.
	if !result.Record.Active {
		t.Error("expected new record to be active")
	}
	if !result.Record.Length.Decimal.Equal(decimal.RequireFromString("240")) {
		t.Errorf("expected length 240, got %s", result.Record.Length.Decimal)
	}
	if result.Record.Weight.Valid {
		t.Error("expected weight cleared on shortened record")
	}
	if result.Record.Quantity != 1 {
		t.Errorf("expected quantity reset to 1, got %d", result.Record.Quantity)
	}
	if !strings.Contains(result.Record.Notes, "Shortened from 600 to 240") {
		t.Errorf("expected provenance note, got %q", result.Record.Notes)
	}
	if !strings.Contains(result.Record.Notes, "cut test") {
		t.Errorf("expected caller notes preserved, got %q", result.Record.Notes)
	}
	if !strings.Contains(result.Record.Notes, "initial stock") {
		t.Errorf("expected previous notes carried along, got %q", result.Record.Notes)
	}

	// Everything else copied.
	if result.Record.Material != created.Material || result.Record.Location != created.Location {
		t.Error("expected classification and location copied to new record")
	}
	if result.Record.ID == created.ID {
		t.Error("expected a new row, not an in-place edit")
	}

	// Old record: retired, untouched length.
	if result.Previous.Active {
		t.Error("expected previous record to be inactive")
	}
	if !result.Previous.Length.Decimal.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expected old length unchanged at 600, got %s", result.Previous.Length.Decimal)
	}

	history, err := History(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected history of 2, got %d", len(history))
	}

	// The new active record answers GetActive.
	active, _ := GetActive(ctx, database, "JA000001")
	if active.ID != result.Record.ID {
		t.Error("expected GetActive to return the shortened record")
	}
}

func TestShortenRejectsNotShorter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))
	ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("240"), cutTime(), "")

	for _, target := range []string{"240", "300"} {
		_, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString(target), cutTime(), "")
		if !IsInvalidInput(err) {
			t.Errorf("shorten to %s: expected invalid input, got %v", target, err)
		}
	}

	// No writes happened: the active record still measures 240.
	active, _ := GetActive(ctx, database, "JA000001")
	if !active.Length.Decimal.Equal(decimal.RequireFromString("240")) {
		t.Errorf("expected active length unchanged at 240, got %s", active.Length.Decimal)
	}
	history, _ := History(ctx, database, "JA000001")
	if len(history) != 2 {
		t.Errorf("expected history unchanged at 2, got %d", len(history))
	}
}

func TestShortenRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	for _, target := range []string{"0", "-10"} {
		_, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString(target), cutTime(), "")
		if !IsInvalidInput(err) {
			t.Errorf("shorten to %s: expected invalid input, got %v", target, err)
		}
	}
}

func TestShortenNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := ShortenStock(context.Background(), database, "JA999999", decimal.RequireFromString("10"), cutTime(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShortenNoActiveRecord(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))
	DeactivateStock(ctx, database, "JA000001")

	_, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("100"), cutTime(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for inactive item, got %v", err)
	}
}

func TestShortenNoRecordedLength(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	r := testRecord("JA000001")
	r.Length = decimal.NullDecimal{}
	CreateStock(ctx, database, r)

	_, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("100"), cutTime(), "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestShortenHistoryCompleteness(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	lengths := []string{"500", "350", "200", "50"}
	for _, l := range lengths {
		if _, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString(l), cutTime(), ""); err != nil {
			t.Fatalf("ShortenStock to %s: %v", l, err)
		}
	}

	history, err := History(ctx, database, "JA000001")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(lengths)+1 {
		t.Fatalf("expected %d records, got %d", len(lengths)+1, len(history))
	}

	// Exactly one active record, and it is the last.
	activeCount := 0
	for _, r := range history {
		if r.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("expected exactly 1 active record, got %d", activeCount)
	}
	if !history[len(history)-1].Active {
		t.Error("expected the chronologically last record to be the active one")
	}

	// Lengths are strictly decreasing along the chain.
	for i := 1; i < len(history); i++ {
		if !history[i].Length.Decimal.LessThan(history[i-1].Length.Decimal) {
			t.Errorf("lengths not decreasing: %s then %s",
				history[i-1].Length.Decimal, history[i].Length.Decimal)
		}
	}
}

func TestShortenDecimalLengths(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	r := testRecord("JA000001")
	r.Length = dec("600.5")
	CreateStock(ctx, database, r)

	result, err := ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("240.25"), cutTime(), "")
	if err != nil {
		t.Fatalf("ShortenStock: %v", err)
	}
	if !result.Record.Length.Decimal.Equal(decimal.RequireFromString("240.25")) {
		t.Errorf("expected length 240.25, got %s", result.Record.Length.Decimal)
	}
	if !strings.Contains(result.Record.Notes, "Shortened from 600.5 to 240.25 on 2026-03-14") {
		t.Errorf("expected decimal provenance note, got %q", result.Record.Notes)
	}
}

func TestConcurrentShortenSingleWinner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateStock(ctx, database, testRecord("JA000001"))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ShortenStock(ctx, database, "JA000001", decimal.RequireFromString("240"), cutTime(), "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict), IsInvalidInput(err):
			// Losers see a stale row, a constraint rejection, or a target
			// no longer shorter than the current length.
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful shorten, got %d", succeeded)
	}

	// Invariant holds regardless of who lost.
	var activeCount int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM stock WHERE ja_id = 'JA000001' AND active = 1`,
	).Scan(&activeCount)
	if err != nil {
		t.Fatalf("counting active records: %v", err)
	}
	if activeCount != 1 {
		t.Errorf("expected 1 active record after concurrent shortens, got %d", activeCount)
	}

	history, _ := History(ctx, database, "JA000001")
	if len(history) != 2 {
		t.Errorf("expected 2 records (one cut applied), got %d", len(history))
	}
}
