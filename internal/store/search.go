package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/model"
)

// Field names a filterable column. The set is closed: predicates on any
// other name are rejected before a query is built, so filter input can
// never reach SQL as an identifier.
type Field string

// Filterable fields.
const (
	FieldItemType      Field = "item_type"
	FieldShape         Field = "shape"
	FieldMaterial      Field = "material"
	FieldThreadSeries  Field = "thread_series"
	FieldThreadSize    Field = "thread_size"
	FieldLocation      Field = "location"
	FieldSubLocation   Field = "sub_location"
	FieldVendor        Field = "vendor"
	FieldNotes         Field = "notes"
	FieldJAID          Field = "ja_id"
	FieldLength        Field = "length"
	FieldWidth         Field = "width"
	FieldThickness     Field = "thickness"
	FieldWallThickness Field = "wall_thickness"
	FieldWeight        Field = "weight"
	FieldQuantity      Field = "quantity"
)

// textFields accept Match and Contains predicates.
var textFields = map[Field]bool{
	FieldItemType: true, FieldShape: true, FieldMaterial: true,
	FieldThreadSeries: true, FieldThreadSize: true,
	FieldLocation: true, FieldSubLocation: true,
	FieldVendor: true, FieldNotes: true, FieldJAID: true,
}

// rangeFields accept Range predicates.
var rangeFields = map[Field]bool{
	FieldLength: true, FieldWidth: true, FieldThickness: true,
	FieldWallThickness: true, FieldWeight: true, FieldQuantity: true,
}

type matchPred struct {
	field Field
	value string
}

type rangePred struct {
	field    Field
	min, max *decimal.Decimal
}

type containsPred struct {
	field Field
	query string
	exact bool
}

// Filter is a composable set of predicates, all ANDed, evaluated against
// the active-record projection only. Filters are values: every builder
// method returns a new Filter and never mutates its receiver, so partial
// filters can be shared and extended independently.
type Filter struct {
	matches   []matchPred
	ranges    []rangePred
	contains  []containsPred
	orderBy   Field
	orderDesc bool
}

// Match adds a case-insensitive equality predicate.
func (f Filter) Match(field Field, value string) Filter {
	f.matches = append(slices.Clone(f.matches), matchPred{field: field, value: value})
	return f
}

// Range adds an inclusive [min, max] predicate on a numeric field. Either
// bound may be nil (unbounded). A record missing the field matches only
// when both bounds are nil.
func (f Filter) Range(field Field, min, max *decimal.Decimal) Filter {
	f.ranges = append(slices.Clone(f.ranges), rangePred{field: field, min: min, max: max})
	return f
}

// Contains adds a case-insensitive substring predicate. With exact set, the
// field must equal the query instead of merely containing it.
func (f Filter) Contains(field Field, query string, exact bool) Filter {
	f.contains = append(slices.Clone(f.contains), containsPred{field: field, query: query, exact: exact})
	return f
}

// OrderBy overrides the default JA ID ordering of results.
func (f Filter) OrderBy(field Field, desc bool) Filter {
	f.orderBy = field
	f.orderDesc = desc
	return f
}

// build compiles the filter into a WHERE/ORDER BY suffix and its arguments.
func (f Filter) build() (string, []any, error) {
	query := ` WHERE active = 1`
	var args []any

	for _, m := range f.matches {
		if !textFields[m.field] {
			return "", nil, &InvalidInputError{Field: string(m.field), Reason: "not a match field"}
		}
		query += fmt.Sprintf(` AND %s = ? COLLATE NOCASE`, m.field)
		args = append(args, m.value)
	}

	for _, r := range f.ranges {
		if !rangeFields[r.field] {
			return "", nil, &InvalidInputError{Field: string(r.field), Reason: "not a range field"}
		}
		if r.min == nil && r.max == nil {
			continue
		}
		// A bounded range never matches records missing the field.
		query += fmt.Sprintf(` AND %s IS NOT NULL`, r.field)
		if r.min != nil {
			query += fmt.Sprintf(` AND %s >= CAST(? AS NUMERIC)`, r.field)
			args = append(args, r.min.String())
		}
		if r.max != nil {
			query += fmt.Sprintf(` AND %s <= CAST(? AS NUMERIC)`, r.field)
			args = append(args, r.max.String())
		}
	}

	for _, c := range f.contains {
		if !textFields[c.field] {
			return "", nil, &InvalidInputError{Field: string(c.field), Reason: "not a text field"}
		}
		if c.exact {
			query += fmt.Sprintf(` AND %s = ? COLLATE NOCASE`, c.field)
			args = append(args, c.query)
		} else {
			query += fmt.Sprintf(` AND %s LIKE ? ESCAPE '\'`, c.field)
			args = append(args, "%"+escapeLike(c.query)+"%")
		}
	}

	if f.orderBy != "" {
		if !textFields[f.orderBy] && !rangeFields[f.orderBy] {
			return "", nil, &InvalidInputError{Field: string(f.orderBy), Reason: "not an orderable field"}
		}
		dir := "ASC"
		if f.orderDesc {
			dir = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY %s %s, ja_id`, f.orderBy, dir)
	} else {
		query += ` ORDER BY ja_id`
	}

	return query, args, nil
}

// escapeLike escapes LIKE wildcards in user-supplied query text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Search evaluates a filter over the active-record projection. Inactive
// records are never considered.
func Search(ctx context.Context, db querier, f Filter) ([]model.StockRecord, error) {
	suffix, args, err := f.build()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+stockColumns+` FROM stock`+suffix, args...)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	return scanStockRows(rows)
}
