package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geom"
)

var (
	// ErrInvalidCoordinate is returned for NaN or infinite coordinates.
	ErrInvalidCoordinate = errors.New("shape: invalid coordinate")

	// ErrInvalidRectangle is returned when a rectangle's min corner exceeds its max corner.
	ErrInvalidRectangle = errors.New("shape: invalid rectangle")

	// ErrInvalidPolygon is returned for polygons without a usable outer ring.
	ErrInvalidPolygon = errors.New("shape: invalid polygon")

	// ErrUnsupportedGeometry is returned when a geometry type cannot be indexed.
	ErrUnsupportedGeometry = errors.New("shape: unsupported geometry")
)

// Relation describes how a shape relates to a cell rectangle.
type Relation uint8

const (
	// Disjoint means the shape and the cell have no point in common.
	Disjoint Relation = iota
	// Intersects means the shape and the cell overlap partially.
	Intersects
	// Within means the cell contains the whole shape.
	Within
	// Contains means the shape contains the whole cell.
	Contains
)

func (r Relation) String() string {
	switch r {
	case Disjoint:
		return "DISJOINT"
	case Intersects:
		return "INTERSECTS"
	case Within:
		return "WITHIN"
	case Contains:
		return "CONTAINS"
	default:
		return fmt.Sprintf("Relation(%d)", uint8(r))
	}
}

// Kind names a shape type.
type Kind string

const (
	KindPoint     Kind = "point"
	KindRectangle Kind = "rectangle"
	KindPolygon   Kind = "polygon"
)

// Shape is the geometry oracle consumed by the prefix tree.
// Implementations are immutable and safe for concurrent use.
type Shape interface {
	// Kind returns the shape type.
	Kind() Kind
	// Bounds returns the bounding box of the shape.
	Bounds() r2.Rect
	// Relate reports how the shape relates to the given cell.
	Relate(cell r2.Rect) Relation
	// Geom returns the shape as a go-geom geometry.
	Geom() geom.T
}

// IsDegenerate reports whether the shape collapses to a single coordinate.
func IsDegenerate(s Shape) bool {
	b := s.Bounds()
	return b.X.Lo == b.X.Hi && b.Y.Lo == b.Y.Hi
}

// Diagonal returns the length of the diagonal of the shape's bounding box.
func Diagonal(s Shape) float64 {
	return s.Bounds().Size().Norm()
}

func checkCoord(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, x, y)
	}
	return nil
}
