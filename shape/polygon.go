package shape

import (
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// Polygon is a planar polygon: one outer ring followed by optional holes.
type Polygon struct {
	g      *geom.Polygon
	bounds r2.Rect
}

var _ Shape = (*Polygon)(nil)

// NewPolygon creates a polygon from rings of points. The first ring is the shell and the
// remaining rings are holes. Rings are closed automatically.
func NewPolygon(rings ...[]r2.Point) (*Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}

	coords := make([][]geom.Coord, 0, len(rings))
	for _, ring := range rings {
		c := make([]geom.Coord, 0, len(ring)+1)
		for _, p := range ring {
			c = append(c, geom.Coord{p.X, p.Y})
		}
		if n := len(ring); n > 0 && ring[0] != ring[n-1] {
			c = append(c, geom.Coord{ring[0].X, ring[0].Y})
		}
		coords = append(coords, c)
	}

	g, err := geom.NewPolygon(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPolygon, err)
	}
	return NewPolygonFromGeom(g)
}

// NewPolygonFromGeom wraps a go-geom polygon. Only the XY dimensions are used.
func NewPolygonFromGeom(g *geom.Polygon) (*Polygon, error) {
	if g == nil || g.NumLinearRings() == 0 {
		return nil, fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}
	if g.Layout() != geom.XY {
		g = flattenPolygon(g)
	}

	for i := 0; i < g.NumLinearRings(); i++ {
		ring := g.LinearRing(i)
		n := ring.NumCoords()
		if n < 4 {
			return nil, fmt.Errorf("%w: ring %d has %d coordinates, need at least 4", ErrInvalidPolygon, i, n)
		}
		for j := 0; j < n; j++ {
			c := ring.Coord(j)
			if err := checkCoord(c.X(), c.Y()); err != nil {
				return nil, err
			}
		}
		first, last := ring.Coord(0), ring.Coord(n-1)
		if first.X() != last.X() || first.Y() != last.Y() {
			return nil, fmt.Errorf("%w: ring %d is not closed", ErrInvalidPolygon, i)
		}
	}

	b := g.Bounds()
	return &Polygon{
		g: g,
		bounds: r2.Rect{
			X: r1.Interval{Lo: b.Min(0), Hi: b.Max(0)},
			Y: r1.Interval{Lo: b.Min(1), Hi: b.Max(1)},
		},
	}, nil
}

// Kind implements Shape.
func (p *Polygon) Kind() Kind { return KindPolygon }

// Bounds implements Shape.
func (p *Polygon) Bounds() r2.Rect { return p.bounds }

// Geom implements Shape.
func (p *Polygon) Geom() geom.T { return p.g }

// ContainsPoint reports whether pt lies inside the polygon or on its boundary.
func (p *Polygon) ContainsPoint(pt r2.Point) bool {
	c := geom.Coord{pt.X, pt.Y}
	if xy.LocatePointInRing(geom.XY, c, p.g.LinearRing(0).FlatCoords()) == location.Exterior {
		return false
	}
	for i := 1; i < p.g.NumLinearRings(); i++ {
		if xy.LocatePointInRing(geom.XY, c, p.g.LinearRing(i).FlatCoords()) == location.Interior {
			return false
		}
	}
	return true
}

// Relate implements Shape.
//
// An edge crossing the open interior of the cell means the boundary of the polygon runs
// through it. Without such an edge the cell interior lies entirely inside or entirely
// outside the polygon, which the cell center decides.
func (p *Polygon) Relate(cell r2.Rect) Relation {
	if !p.bounds.Intersects(cell) {
		return Disjoint
	}

	if !p.edgesCross(cell) {
		if p.ContainsPoint(cell.Center()) {
			return Contains
		}
		if p.touches(cell) {
			return Intersects
		}
		return Disjoint
	}

	if cell.Contains(p.bounds) {
		return Within
	}
	return Intersects
}

func (p *Polygon) edgesCross(cell r2.Rect) bool {
	found := false
	p.eachEdge(func(a, b r2.Point) bool {
		if segmentCrossesInterior(a, b, cell) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (p *Polygon) touches(cell r2.Rect) bool {
	found := false
	p.eachEdge(func(a, b r2.Point) bool {
		if _, _, ok := clipSegment(a, b, cell); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

func (p *Polygon) eachEdge(fn func(a, b r2.Point) bool) {
	for i := 0; i < p.g.NumLinearRings(); i++ {
		flat := p.g.LinearRing(i).FlatCoords()
		for j := 2; j+1 < len(flat); j += 2 {
			a := r2.Point{X: flat[j-2], Y: flat[j-1]}
			b := r2.Point{X: flat[j], Y: flat[j+1]}
			if !fn(a, b) {
				return
			}
		}
	}
}

func flattenPolygon(g *geom.Polygon) *geom.Polygon {
	coords := g.Coords()
	flat := make([][]geom.Coord, len(coords))
	for i, ring := range coords {
		flat[i] = make([]geom.Coord, len(ring))
		for j, c := range ring {
			flat[i][j] = geom.Coord{c.X(), c.Y()}
		}
	}
	return geom.NewPolygon(geom.XY).MustSetCoords(flat)
}
