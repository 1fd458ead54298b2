package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evanmh/stocktrack/internal/inventory"
	"github.com/evanmh/stocktrack/internal/model"
	"github.com/evanmh/stocktrack/internal/store"
)

// StockHandler handles stock record endpoints.
type StockHandler struct {
	Service *inventory.Service
}

// stockRequest is the submitted form of a stock record. Enum fields arrive
// as strings and are rejected at this boundary if unknown.
type stockRequest struct {
	JAID             string              `json:"ja_id"`
	ItemType         string              `json:"item_type"`
	Shape            string              `json:"shape"`
	Material         string              `json:"material"`
	Length           decimal.NullDecimal `json:"length"`
	Width            decimal.NullDecimal `json:"width"`
	Thickness        decimal.NullDecimal `json:"thickness"`
	WallThickness    decimal.NullDecimal `json:"wall_thickness"`
	Weight           decimal.NullDecimal `json:"weight"`
	ThreadSeries     string              `json:"thread_series"`
	ThreadHandedness string              `json:"thread_handedness"`
	ThreadSize       string              `json:"thread_size"`
	Quantity         int                 `json:"quantity"`
	Location         string              `json:"location"`
	SubLocation      string              `json:"sub_location"`
	PurchaseDate     string              `json:"purchase_date"`
	PurchasePrice    decimal.NullDecimal `json:"purchase_price"`
	PurchaseLocation string              `json:"purchase_location"`
	Vendor           string              `json:"vendor"`
	VendorPart       string              `json:"vendor_part"`
	Notes            string              `json:"notes"`
}

// toRecord converts a request to a typed record, failing closed on unknown
// enum values or malformed dates.
func (req *stockRequest) toRecord() (*model.StockRecord, error) {
	itemType, err := model.ParseItemType(req.ItemType)
	if err != nil {
		return nil, err
	}
	shape, err := model.ParseShape(req.Shape)
	if err != nil {
		return nil, err
	}
	series, err := model.ParseThreadSeries(req.ThreadSeries)
	if err != nil {
		return nil, err
	}
	handedness, err := model.ParseThreadHandedness(req.ThreadHandedness)
	if err != nil {
		return nil, err
	}

	r := &model.StockRecord{
		JAID:             req.JAID,
		ItemType:         itemType,
		Shape:            shape,
		Material:         req.Material,
		Length:           req.Length,
		Width:            req.Width,
		Thickness:        req.Thickness,
		WallThickness:    req.WallThickness,
		Weight:           req.Weight,
		ThreadSeries:     series,
		ThreadHandedness: handedness,
		ThreadSize:       req.ThreadSize,
		Quantity:         req.Quantity,
		Location:         req.Location,
		SubLocation:      req.SubLocation,
		PurchasePrice:    req.PurchasePrice,
		PurchaseLocation: req.PurchaseLocation,
		Vendor:           req.Vendor,
		VendorPart:       req.VendorPart,
		Notes:            req.Notes,
	}
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	if req.PurchaseDate != "" {
		t, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase_date %q", req.PurchaseDate)
		}
		r.PurchaseDate = &t
	}
	return r, nil
}

// List handles GET /api/stock. Query parameters compose a filter over the
// active projection.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.Service.Search(r.Context(), f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []model.StockRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// filterFromQuery builds a filter from list query parameters.
func filterFromQuery(r *http.Request) (store.Filter, error) {
	var f store.Filter
	q := r.URL.Query()

	for param, field := range map[string]store.Field{
		"item_type": store.FieldItemType,
		"shape":     store.FieldShape,
		"material":  store.FieldMaterial,
		"location":  store.FieldLocation,
	} {
		if v := q.Get(param); v != "" {
			f = f.Match(field, v)
		}
	}

	if v := q.Get("q"); v != "" {
		f = f.Contains(store.FieldNotes, v, false)
	}

	var min, max *decimal.Decimal
	if v := q.Get("min_length"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid min_length %q", v)
		}
		min = &d
	}
	if v := q.Get("max_length"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("invalid max_length %q", v)
		}
		max = &d
	}
	if min != nil || max != nil {
		f = f.Range(store.FieldLength, min, max)
	}

	return f, nil
}

// Create handles POST /api/stock.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := req.toRecord()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Service.Create(r.Context(), record)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("stock created", "ja_id", created.JAID, "item", created.DisplayName())
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/stock/{ja_id}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetActive(r.Context(), r.PathValue("ja_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Update handles PUT /api/stock/{ja_id}. The path JA ID wins over any ID in
// the body, and the active flag cannot be changed through this endpoint.
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.JAID = r.PathValue("ja_id")

	record, err := req.toRecord()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Service.Update(r.Context(), record)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("stock updated", "ja_id", updated.JAID)
	jsonResponse(w, http.StatusOK, updated)
}

// Deactivate handles DELETE /api/stock/{ja_id}.
func (h *StockHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	jaID := r.PathValue("ja_id")
	if err := h.Service.Deactivate(r.Context(), jaID); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("stock deactivated", "ja_id", jaID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "record deactivated"})
}

// Activate handles POST /api/stock/{ja_id}/activate.
func (h *StockHandler) Activate(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Activate(r.Context(), r.PathValue("ja_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("stock activated", "ja_id", record.JAID)
	jsonResponse(w, http.StatusOK, record)
}

type shortenRequest struct {
	Length  decimal.Decimal `json:"length"`
	CutDate string          `json:"cut_date"`
	Notes   string          `json:"notes"`
}

// Shorten handles POST /api/stock/{ja_id}/shorten.
func (h *StockHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	jaID := r.PathValue("ja_id")

	var req shortenRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var cutDate time.Time
	if req.CutDate != "" {
		t, err := time.Parse("2006-01-02", req.CutDate)
		if err != nil {
			jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid cut_date %q", req.CutDate))
			return
		}
		cutDate = t
	}

	result, err := h.Service.Shorten(r.Context(), jaID, req.Length, cutDate, req.Notes)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("stock shortened",
		"ja_id", jaID,
		"old_length", result.OldLength,
		"new_length", result.NewLength,
	)
	jsonResponse(w, http.StatusOK, result)
}

// History handles GET /api/stock/{ja_id}/history.
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.History(r.Context(), r.PathValue("ja_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

type rangeBounds struct {
	Min *decimal.Decimal `json:"min"`
	Max *decimal.Decimal `json:"max"`
}

type containsClause struct {
	Field string `json:"field"`
	Query string `json:"query"`
	Exact bool   `json:"exact"`
}

type searchRequest struct {
	Match    map[string]string      `json:"match"`
	Range    map[string]rangeBounds `json:"range"`
	Contains []containsClause       `json:"contains"`
	OrderBy  string                 `json:"order_by"`
	Desc     bool                   `json:"desc"`
}

// Search handles POST /api/stock/search with a structured filter body.
// Unknown field names are rejected as invalid input.
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var f store.Filter
	for field, value := range req.Match {
		f = f.Match(store.Field(field), value)
	}
	for field, bounds := range req.Range {
		f = f.Range(store.Field(field), bounds.Min, bounds.Max)
	}
	for _, c := range req.Contains {
		f = f.Contains(store.Field(c.Field), c.Query, c.Exact)
	}
	if req.OrderBy != "" {
		f = f.OrderBy(store.Field(req.OrderBy), req.Desc)
	}

	records, err := h.Service.Search(r.Context(), f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []model.StockRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Stats handles GET /api/stats.
func (h *StockHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
