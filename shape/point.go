package shape

import (
	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geom"
)

// Point is a single coordinate.
type Point struct {
	p r2.Point
}

var _ Shape = (*Point)(nil)

// NewPoint creates a point at (x, y).
func NewPoint(x, y float64) (*Point, error) {
	if err := checkCoord(x, y); err != nil {
		return nil, err
	}
	return &Point{p: r2.Point{X: x, Y: y}}, nil
}

// X returns the x (longitude) coordinate.
func (p *Point) X() float64 { return p.p.X }

// Y returns the y (latitude) coordinate.
func (p *Point) Y() float64 { return p.p.Y }

// Center returns the point itself.
func (p *Point) Center() r2.Point { return p.p }

// Kind implements Shape.
func (p *Point) Kind() Kind { return KindPoint }

// Bounds implements Shape.
func (p *Point) Bounds() r2.Rect { return r2.RectFromPoints(p.p) }

// Relate implements Shape. A point never contains a cell.
func (p *Point) Relate(cell r2.Rect) Relation {
	if cell.ContainsPoint(p.p) {
		return Within
	}
	return Disjoint
}

// Geom implements Shape.
func (p *Point) Geom() geom.T {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{p.p.X, p.p.Y})
}
