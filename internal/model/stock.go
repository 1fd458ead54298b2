package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord is one physical state of a stock item. The same JA ID is
// shared by every record describing the same item; exactly one of them is
// active at a time, the rest are history.
type StockRecord struct {
	ID     int64  `json:"id"`
	JAID   string `json:"ja_id"`
	Active bool   `json:"active"`

	ItemType ItemType `json:"item_type"`
	Shape    Shape    `json:"shape"`
	Material string   `json:"material"`

	// Dimensions in millimeters, weight in kilograms. Optional, but
	// strictly positive when present.
	Length        decimal.NullDecimal `json:"length"`
	Width         decimal.NullDecimal `json:"width"`
	Thickness     decimal.NullDecimal `json:"thickness"`
	WallThickness decimal.NullDecimal `json:"wall_thickness"`
	Weight        decimal.NullDecimal `json:"weight"`

	ThreadSeries     ThreadSeries     `json:"thread_series,omitempty"`
	ThreadHandedness ThreadHandedness `json:"thread_handedness,omitempty"`
	ThreadSize       string           `json:"thread_size,omitempty"`

	Quantity    int    `json:"quantity"`
	Location    string `json:"location,omitempty"`
	SubLocation string `json:"sub_location,omitempty"`

	PurchaseDate     *time.Time          `json:"purchase_date,omitempty"`
	PurchasePrice    decimal.NullDecimal `json:"purchase_price"`
	PurchaseLocation string              `json:"purchase_location,omitempty"`
	Vendor           string              `json:"vendor,omitempty"`
	VendorPart       string              `json:"vendor_part,omitempty"`

	Notes string `json:"notes,omitempty"`

	// Provenance of after-the-fact corrections: the values a record held
	// before its classification was fixed.
	OriginalMaterial string `json:"original_material,omitempty"`
	OriginalThread   string `json:"original_thread,omitempty"`

	DateAdded    time.Time `json:"date_added"`
	LastModified time.Time `json:"last_modified"`
}

// IsThreaded reports whether the record carries a thread spec.
func (r *StockRecord) IsThreaded() bool {
	return r.ThreadSeries != "" || r.ThreadSize != ""
}

// DisplayName is a short human-readable summary, e.g.
// "JA000042: 4140 Round Bar 25.4 x 600".
func (r *StockRecord) DisplayName() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s %s", r.JAID, r.Material, r.Shape, r.ItemType)

	var dims []string
	for _, d := range []decimal.NullDecimal{r.Width, r.Thickness, r.Length} {
		if d.Valid {
			dims = append(dims, d.Decimal.String())
		}
	}
	if len(dims) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(dims, " x "))
	}
	if r.IsThreaded() && r.ThreadSize != "" {
		fmt.Fprintf(&b, " (%s %s)", r.ThreadSize, r.ThreadSeries)
	}
	return b.String()
}

// Photo is an image attached to a logical item (by JA ID, not one record
// version), so it survives shortening.
type Photo struct {
	ID        string    `json:"id"`
	JAID      string    `json:"ja_id"`
	MIME      string    `json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}
