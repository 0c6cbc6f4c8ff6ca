package tree

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

const (
	// QuadDefaultLevels is the default depth of a quad tree.
	QuadDefaultLevels = 12
	// QuadMaxLevels is the deepest quad tree supported.
	QuadMaxLevels = 50
)

// QuadOption configures a QuadTree.
type QuadOption func(*QuadTree)

// WithBounds sets the world bounds of a quad tree.
func WithBounds(b r2.Rect) QuadOption {
	return func(q *QuadTree) {
		q.bounds = b
	}
}

// QuadTree splits every cell into four quadrants.
type QuadTree struct {
	maxLevels int
	bounds    r2.Rect
}

var _ SpatialPrefixTree = (*QuadTree)(nil)

// NewQuadTree creates a quad tree with the given depth. World bounds default to GeoBounds.
func NewQuadTree(maxLevels int, opts ...QuadOption) (*QuadTree, error) {
	q := &QuadTree{maxLevels: maxLevels, bounds: GeoBounds}
	for _, opt := range opts {
		opt(q)
	}
	if err := checkLevels(KindQuad, maxLevels, QuadMaxLevels); err != nil {
		return nil, err
	}
	if !validBounds(q.bounds) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, q.bounds)
	}
	return q, nil
}

// Kind implements SpatialPrefixTree.
func (q *QuadTree) Kind() Kind { return KindQuad }

// MaxLevels implements SpatialPrefixTree.
func (q *QuadTree) MaxLevels() int { return q.maxLevels }

// WorldBounds implements SpatialPrefixTree.
func (q *QuadTree) WorldBounds() r2.Rect { return q.bounds }

// BranchingFactor implements SpatialPrefixTree.
func (q *QuadTree) BranchingFactor() int { return 4 }

// Root implements SpatialPrefixTree.
func (q *QuadTree) Root() Cell { return Cell{Bounds: q.bounds} }

// Subcells implements SpatialPrefixTree. Children come in NW, NE, SW, SE order.
func (q *QuadTree) Subcells(parent Cell) []Cell {
	if parent.Level >= q.maxLevels {
		return nil
	}
	out := make([]Cell, 4)
	for d := range 4 {
		out[d] = Cell{
			Token:  parent.Token + string(rune('0'+d)),
			Level:  parent.Level + 1,
			Bounds: quadrant(parent.Bounds, d),
		}
	}
	return out
}

// CellAt implements SpatialPrefixTree.
func (q *QuadTree) CellAt(p r2.Point, level int) Cell {
	level = clampLevel(level, q.maxLevels)
	p = q.bounds.ClampPoint(p)

	b := q.bounds
	var sb strings.Builder
	sb.Grow(level)
	for range level {
		c := b.Center()
		d := 0
		if p.X > c.X {
			d |= 1
		}
		if p.Y <= c.Y {
			d |= 2
		}
		sb.WriteByte(byte('0' + d))
		b = quadrant(b, d)
	}
	return Cell{Token: sb.String(), Level: level, Bounds: b}
}

// Cell implements SpatialPrefixTree.
func (q *QuadTree) Cell(token string) (Cell, error) {
	if len(token) > q.maxLevels {
		return Cell{}, fmt.Errorf("%w: %q deeper than %d levels", ErrInvalidToken, token, q.maxLevels)
	}
	b := q.bounds
	for i := 0; i < len(token); i++ {
		d := int(token[i]) - '0'
		if d < 0 || d > 3 {
			return Cell{}, fmt.Errorf("%w: %q has digit %q", ErrInvalidToken, token, token[i])
		}
		b = quadrant(b, d)
	}
	return Cell{Token: token, Level: len(token), Bounds: b}, nil
}

// CellSize implements SpatialPrefixTree.
func (q *QuadTree) CellSize(level int) r2.Point {
	s := q.bounds.Size()
	return r2.Point{X: math.Ldexp(s.X, -level), Y: math.Ldexp(s.Y, -level)}
}

// quadrant returns the bounds of quadrant d of b: bit 0 selects east, bit 1 selects south.
func quadrant(b r2.Rect, d int) r2.Rect {
	c := b.Center()
	x := r1.Interval{Lo: b.X.Lo, Hi: c.X}
	if d&1 != 0 {
		x = r1.Interval{Lo: c.X, Hi: b.X.Hi}
	}
	y := r1.Interval{Lo: c.Y, Hi: b.Y.Hi}
	if d&2 != 0 {
		y = r1.Interval{Lo: b.Y.Lo, Hi: c.Y}
	}
	return r2.Rect{X: x, Y: y}
}

func validBounds(b r2.Rect) bool {
	for _, v := range []float64{b.X.Lo, b.X.Hi, b.Y.Lo, b.Y.Hi} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X.Lo < b.X.Hi && b.Y.Lo < b.Y.Hi
}
