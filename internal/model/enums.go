package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ItemType classifies the overall form of a stock item.
type ItemType string

// Item types.
const (
	ItemTypeBar         ItemType = "Bar"
	ItemTypePlate       ItemType = "Plate"
	ItemTypeSheet       ItemType = "Sheet"
	ItemTypeTube        ItemType = "Tube"
	ItemTypeAngle       ItemType = "Angle"
	ItemTypeThreadedRod ItemType = "Threaded Rod"
)

// Shape is the cross-section of a stock item.
type Shape string

// Shapes.
const (
	ShapeRectangular Shape = "Rectangular"
	ShapeRound       Shape = "Round"
	ShapeSquare      Shape = "Square"
	ShapeHex         Shape = "Hex"
)

// ThreadSeries identifies the thread standard of a threaded item.
type ThreadSeries string

// Thread series.
const (
	ThreadSeriesUNC    ThreadSeries = "UNC"
	ThreadSeriesUNF    ThreadSeries = "UNF"
	ThreadSeriesUNEF   ThreadSeries = "UNEF"
	ThreadSeriesMetric ThreadSeries = "Metric"
)

// ThreadHandedness is the thread direction.
type ThreadHandedness string

// Thread handedness.
const (
	ThreadRightHand ThreadHandedness = "RH"
	ThreadLeftHand  ThreadHandedness = "LH"
)

var itemTypes = []ItemType{
	ItemTypeBar, ItemTypePlate, ItemTypeSheet,
	ItemTypeTube, ItemTypeAngle, ItemTypeThreadedRod,
}

var shapes = []Shape{ShapeRectangular, ShapeRound, ShapeSquare, ShapeHex}

var threadSeries = []ThreadSeries{
	ThreadSeriesUNC, ThreadSeriesUNF, ThreadSeriesUNEF, ThreadSeriesMetric,
}

var handednesses = []ThreadHandedness{ThreadRightHand, ThreadLeftHand}

// ParseItemType maps a stored or submitted string to a known item type.
// Matching is case-insensitive; unknown values are rejected at the boundary.
func ParseItemType(s string) (ItemType, error) {
	for _, t := range itemTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// ParseShape maps a stored or submitted string to a known shape.
func ParseShape(s string) (Shape, error) {
	for _, sh := range shapes {
		if strings.EqualFold(s, string(sh)) {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// ParseThreadSeries maps a stored or submitted string to a known thread series.
// The empty string is valid and means "not threaded".
func ParseThreadSeries(s string) (ThreadSeries, error) {
	if s == "" {
		return "", nil
	}
	for _, ts := range threadSeries {
		if strings.EqualFold(s, string(ts)) {
			return ts, nil
		}
	}
	return "", fmt.Errorf("unknown thread series %q", s)
}

// ParseThreadHandedness maps a stored or submitted string to a thread direction.
// The empty string is valid and means "not threaded".
func ParseThreadHandedness(s string) (ThreadHandedness, error) {
	if s == "" {
		return "", nil
	}
	for _, h := range handednesses {
		if strings.EqualFold(s, string(h)) {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown thread handedness %q", s)
}

// jaIDPattern is the fixed JA ID format: two uppercase letters, six digits.
var jaIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{6}$`)

// ValidJAID reports whether s is a well-formed JA ID.
func ValidJAID(s string) bool {
	return jaIDPattern.MatchString(s)
}
