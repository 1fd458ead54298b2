// Package inventory is the facade in front of the record store. All
// callers (API handlers, tools, tests) go through a Service: it validates
// input, consults the type/shape compatibility checker, owns the read
// cache, and delegates persistence and transaction boundaries to the store.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/model"
	"github.com/evanmh/stocktrack/internal/store"
)

// DefaultCacheTTL bounds how stale a cached active-projection read can be.
const DefaultCacheTTL = 5 * time.Second

// Service exposes all inventory operations.
type Service struct {
	db     *sql.DB
	cache  *activeCache
	compat CompatibilityChecker
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides the read-cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cache = newActiveCache(ttl) }
}

// WithCompatibility replaces the type/shape compatibility checker.
func WithCompatibility(c CompatibilityChecker) Option {
	return func(s *Service) { s.compat = c }
}

// New creates a Service over an open database.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:     db,
		cache:  newActiveCache(DefaultCacheTTL),
		compat: DefaultCompatibility(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetActive returns the current state of an item.
func (s *Service) GetActive(ctx context.Context, jaID string) (*model.StockRecord, error) {
	if r, ok := s.cache.get(jaID); ok {
		return r, nil
	}

	r, err := store.GetActive(ctx, s.db, jaID)
	if err != nil {
		return nil, err
	}
	s.cache.put(r)
	return r, nil
}

// ListActive returns the current state of every item, ordered by JA ID.
func (s *Service) ListActive(ctx context.Context) ([]model.StockRecord, error) {
	if records, ok := s.cache.getList(); ok {
		return records, nil
	}

	records, err := store.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.cache.putList(records)
	return records, nil
}

// ExistsActive reports whether an item currently has an active record.
func (s *Service) ExistsActive(ctx context.Context, jaID string) (bool, error) {
	if _, ok := s.cache.get(jaID); ok {
		return true, nil
	}
	return store.ExistsActive(ctx, s.db, jaID)
}

// History returns the full version chain of an item, oldest first.
func (s *Service) History(ctx context.Context, jaID string) ([]model.StockRecord, error) {
	return store.History(ctx, s.db, jaID)
}

// Search evaluates a filter over the active projection.
func (s *Service) Search(ctx context.Context, f store.Filter) ([]model.StockRecord, error) {
	return store.Search(ctx, s.db, f)
}

// Create inserts a new item. Fails with a conflict if the JA ID already has
// an active record.
func (s *Service) Create(ctx context.Context, r *model.StockRecord) (*model.StockRecord, error) {
	if err := s.validate(r); err != nil {
		return nil, err
	}

	created, err := store.CreateStock(ctx, s.db, r)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate()
	return created, nil
}

// Update corrects the current active record in place without creating
// history. The active flag cannot be changed this way; activation
// transitions go only through Activate, Deactivate, and Shorten. When a
// correction changes the material or thread spec, the pre-change values are
// preserved in the original_* provenance fields.
func (s *Service) Update(ctx context.Context, r *model.StockRecord) (*model.StockRecord, error) {
	if err := s.validate(r); err != nil {
		return nil, err
	}

	cur, err := store.GetActive(ctx, s.db, r.JAID)
	if err != nil {
		return nil, err
	}

	// Annotate a copy so provenance never leaks into the caller's record.
	next := *r
	if next.Material != cur.Material && cur.OriginalMaterial == "" {
		next.OriginalMaterial = cur.Material
	} else if next.OriginalMaterial == "" {
		next.OriginalMaterial = cur.OriginalMaterial
	}
	if threadSpec(&next) != threadSpec(cur) && cur.OriginalThread == "" && threadSpec(cur) != "" {
		next.OriginalThread = threadSpec(cur)
	} else if next.OriginalThread == "" {
		next.OriginalThread = cur.OriginalThread
	}

	updated, err := store.UpdateStock(ctx, s.db, &next)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate()
	return updated, nil
}

// Shorten cuts an item to a new, strictly smaller length. Returns the
// before and after records for audit logging.
func (s *Service) Shorten(ctx context.Context, jaID string, newLength decimal.Decimal, cutDate time.Time, notes string) (*store.ShortenResult, error) {
	if !model.ValidJAID(jaID) {
		return nil, &store.InvalidInputError{Field: "ja_id", Reason: fmt.Sprintf("%q is not a valid JA ID", jaID)}
	}

	result, err := store.ShortenStock(ctx, s.db, jaID, newLength, cutDate, notes)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate()
	return result, nil
}

// Deactivate retires the current active record.
func (s *Service) Deactivate(ctx context.Context, jaID string) error {
	if err := store.DeactivateStock(ctx, s.db, jaID); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// Activate restores the most recently added inactive record.
func (s *Service) Activate(ctx context.Context, jaID string) (*model.StockRecord, error) {
	r, err := store.ActivateStock(ctx, s.db, jaID)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate()
	return r, nil
}

// Stats summarizes the active projection.
type Stats struct {
	Items         int            `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	ByType        map[string]int `json:"by_type"`
	ByMaterial    map[string]int `json:"by_material"`
}

// Stats computes counts over all currently active records.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ByType:     make(map[string]int),
		ByMaterial: make(map[string]int),
	}
	for i := range records {
		r := &records[i]
		stats.Items++
		stats.TotalQuantity += r.Quantity
		stats.ByType[string(r.ItemType)]++
		stats.ByMaterial[r.Material]++
	}
	return stats, nil
}

// validate checks everything that must hold before any write: identifier
// format, closed enum membership, positivity, and type/shape compatibility.
func (s *Service) validate(r *model.StockRecord) error {
	if !model.ValidJAID(r.JAID) {
		return &store.InvalidInputError{Field: "ja_id", Reason: fmt.Sprintf("%q is not a valid JA ID", r.JAID)}
	}
	if _, err := model.ParseItemType(string(r.ItemType)); err != nil {
		return &store.InvalidInputError{Field: "item_type", Reason: err.Error()}
	}
	if _, err := model.ParseShape(string(r.Shape)); err != nil {
		return &store.InvalidInputError{Field: "shape", Reason: err.Error()}
	}
	if _, err := model.ParseThreadSeries(string(r.ThreadSeries)); err != nil {
		return &store.InvalidInputError{Field: "thread_series", Reason: err.Error()}
	}
	if _, err := model.ParseThreadHandedness(string(r.ThreadHandedness)); err != nil {
		return &store.InvalidInputError{Field: "thread_handedness", Reason: err.Error()}
	}
	if r.Material == "" {
		return &store.InvalidInputError{Field: "material", Reason: "required"}
	}
	if r.Quantity <= 0 {
		return &store.InvalidInputError{Field: "quantity", Reason: "must be positive"}
	}

	dims := []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"length", r.Length},
		{"width", r.Width},
		{"thickness", r.Thickness},
		{"wall_thickness", r.WallThickness},
		{"weight", r.Weight},
	}
	for _, d := range dims {
		if d.value.Valid && d.value.Decimal.Sign() <= 0 {
			return &store.InvalidInputError{Field: d.name, Reason: "must be positive when set"}
		}
	}
	if r.PurchasePrice.Valid && r.PurchasePrice.Decimal.Sign() < 0 {
		return &store.InvalidInputError{Field: "purchase_price", Reason: "must not be negative"}
	}

	return s.compat.Check(r)
}

// threadSpec renders a record's thread fields as one comparable string.
func threadSpec(r *model.StockRecord) string {
	parts := make([]string, 0, 3)
	if r.ThreadSize != "" {
		parts = append(parts, r.ThreadSize)
	}
	if r.ThreadSeries != "" {
		parts = append(parts, string(r.ThreadSeries))
	}
	if r.ThreadHandedness != "" {
		parts = append(parts, string(r.ThreadHandedness))
	}
	return strings.Join(parts, " ")
}
