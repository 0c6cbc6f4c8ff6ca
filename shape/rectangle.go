package shape

import (
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geom"
)

// Rectangle is a closed axis-aligned rectangle.
type Rectangle struct {
	r r2.Rect
}

var _ Shape = (*Rectangle)(nil)

// NewRectangle creates a rectangle from its min and max corners.
func NewRectangle(minX, minY, maxX, maxY float64) (*Rectangle, error) {
	if err := checkCoord(minX, minY); err != nil {
		return nil, err
	}
	if err := checkCoord(maxX, maxY); err != nil {
		return nil, err
	}
	if minX > maxX || minY > maxY {
		return nil, fmt.Errorf("%w: min (%v, %v) exceeds max (%v, %v)", ErrInvalidRectangle, minX, minY, maxX, maxY)
	}
	return &Rectangle{r: r2.Rect{
		X: r1.Interval{Lo: minX, Hi: maxX},
		Y: r1.Interval{Lo: minY, Hi: maxY},
	}}, nil
}

// NewEnvelope creates a rectangle from its top-left and bottom-right corners.
func NewEnvelope(topLeft, bottomRight r2.Point) (*Rectangle, error) {
	return NewRectangle(topLeft.X, bottomRight.Y, bottomRight.X, topLeft.Y)
}

// NewRectangleFromRect wraps an r2.Rect.
func NewRectangleFromRect(r r2.Rect) (*Rectangle, error) {
	if r.IsEmpty() {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRectangle)
	}
	return NewRectangle(r.X.Lo, r.Y.Lo, r.X.Hi, r.Y.Hi)
}

// Kind implements Shape.
func (r *Rectangle) Kind() Kind { return KindRectangle }

// Bounds implements Shape.
func (r *Rectangle) Bounds() r2.Rect { return r.r }

// Relate implements Shape.
func (r *Rectangle) Relate(cell r2.Rect) Relation {
	switch {
	case !r.r.Intersects(cell):
		return Disjoint
	case r.r.Contains(cell):
		return Contains
	case cell.Contains(r.r):
		return Within
	default:
		return Intersects
	}
}

// Geom implements Shape. The rectangle is returned as a polygon.
func (r *Rectangle) Geom() geom.T {
	return geom.NewBounds(geom.XY).Set(r.r.X.Lo, r.r.Y.Lo, r.r.X.Hi, r.r.Y.Hi).Polygon()
}
