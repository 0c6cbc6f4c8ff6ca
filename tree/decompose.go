package tree

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/shape"
)

// Covering is the result of decomposing a shape.
type Covering struct {
	// Level is the detail level boundary cells were refined to.
	Level int
	// Cells holds leaf cells and boundary cells in depth-first token order.
	Cells []Cell
	// Outside holds the cells pruned as disjoint from the shape. It is only filled when
	// decomposing with CollectOutside.
	Outside []Cell
}

// Leaves returns the cells fully covered by the shape.
func (c *Covering) Leaves() []Cell {
	var out []Cell
	for _, cell := range c.Cells {
		if cell.Leaf {
			out = append(out, cell)
		}
	}
	return out
}

// Boundary returns the cells the shape covers only partially.
func (c *Covering) Boundary() []Cell {
	var out []Cell
	for _, cell := range c.Cells {
		if !cell.Leaf {
			out = append(out, cell)
		}
	}
	return out
}

type decomposeOptions struct {
	collectOutside bool
}

// DecomposeOption configures Decompose.
type DecomposeOption func(*decomposeOptions)

// CollectOutside records the pruned cells in Covering.Outside.
func CollectOutside() DecomposeOption {
	return func(o *decomposeOptions) {
		o.collectOutside = true
	}
}

// Decompose covers s with cells of t down to level.
//
// Cells the shape contains become leaves and are not refined. Cells the shape crosses are
// refined until level and emitted there as non-leaves. Shapes that collapse to a single
// coordinate yield the one cell containing it at level. That cell is a non-leaf: a point
// never covers a whole cell, so it is indexed as an edge cell rather than a leaf.
func Decompose(t SpatialPrefixTree, s shape.Shape, level int, opts ...DecomposeOption) (*Covering, error) {
	var o decomposeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if level < 1 || level > t.MaxLevels() {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLevel, level, t.MaxLevels())
	}
	b := s.Bounds()
	if !t.WorldBounds().Intersects(b) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, b)
	}

	if shape.IsDegenerate(s) {
		return decomposePoint(t, b.Lo(), level, o.collectOutside), nil
	}

	cov := &Covering{Level: level}
	stack := pushReversed(nil, t.Subcells(t.Root()))
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch s.Relate(c.Bounds) {
		case shape.Disjoint:
			if o.collectOutside {
				cov.Outside = append(cov.Outside, c)
			}
		case shape.Contains:
			c.Leaf = true
			cov.Cells = append(cov.Cells, c)
		default:
			if c.Level >= level {
				cov.Cells = append(cov.Cells, c)
				continue
			}
			stack = pushReversed(stack, t.Subcells(c))
		}
	}
	return cov, nil
}

func decomposePoint(t SpatialPrefixTree, p r2.Point, level int, collectOutside bool) *Covering {
	target := t.CellAt(p, level)
	cov := &Covering{Level: level, Cells: []Cell{target}}
	if !collectOutside {
		return cov
	}

	parent := t.Root()
	for l := 1; l <= level; l++ {
		for _, child := range t.Subcells(parent) {
			if child.Token == target.Token[:l] {
				parent = child
				continue
			}
			cov.Outside = append(cov.Outside, child)
		}
	}
	return cov
}

func pushReversed(stack, cells []Cell) []Cell {
	for i := len(cells) - 1; i >= 0; i-- {
		stack = append(stack, cells[i])
	}
	return stack
}
