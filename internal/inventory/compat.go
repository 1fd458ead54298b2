package inventory

import (
	"fmt"

	"github.com/evanmh/stocktrack/internal/model"
	"github.com/evanmh/stocktrack/internal/store"
)

// CompatibilityChecker validates that a record's item type and shape go
// together and that the dimensions the shape requires are present.
// Failures surface as invalid input, before any write.
type CompatibilityChecker interface {
	Check(r *model.StockRecord) error
}

// typeShapes lists the valid shapes per item type.
var typeShapes = map[model.ItemType][]model.Shape{
	model.ItemTypeBar:         {model.ShapeRound, model.ShapeSquare, model.ShapeHex, model.ShapeRectangular},
	model.ItemTypePlate:       {model.ShapeRectangular},
	model.ItemTypeSheet:       {model.ShapeRectangular},
	model.ItemTypeTube:        {model.ShapeRound, model.ShapeSquare, model.ShapeRectangular},
	model.ItemTypeAngle:       {model.ShapeRectangular},
	model.ItemTypeThreadedRod: {model.ShapeRound},
}

type tableCompat struct{}

// DefaultCompatibility returns the built-in type/shape compatibility table.
func DefaultCompatibility() CompatibilityChecker {
	return tableCompat{}
}

func (tableCompat) Check(r *model.StockRecord) error {
	shapes, ok := typeShapes[r.ItemType]
	if !ok {
		return &store.InvalidInputError{Field: "item_type", Reason: fmt.Sprintf("unknown item type %q", r.ItemType)}
	}

	valid := false
	for _, s := range shapes {
		if s == r.Shape {
			valid = true
			break
		}
	}
	if !valid {
		return &store.InvalidInputError{
			Field:  "shape",
			Reason: fmt.Sprintf("shape %q is not valid for item type %q", r.Shape, r.ItemType),
		}
	}

	// Round and hex sections are described by a single width (diameter or
	// across-flats); rectangular sections need width and thickness.
	switch r.Shape {
	case model.ShapeRound, model.ShapeSquare, model.ShapeHex:
		if !r.Width.Valid {
			return &store.InvalidInputError{Field: "width", Reason: fmt.Sprintf("required for %s %s", r.Shape, r.ItemType)}
		}
	case model.ShapeRectangular:
		if !r.Width.Valid || !r.Thickness.Valid {
			return &store.InvalidInputError{Field: "width", Reason: fmt.Sprintf("width and thickness required for %s %s", r.Shape, r.ItemType)}
		}
	}

	if r.ItemType == model.ItemTypeTube && !r.WallThickness.Valid {
		return &store.InvalidInputError{Field: "wall_thickness", Reason: "required for tube"}
	}

	if r.ItemType == model.ItemTypeThreadedRod && !r.IsThreaded() {
		return &store.InvalidInputError{Field: "thread_size", Reason: "thread spec required for threaded rod"}
	}

	return nil
}
