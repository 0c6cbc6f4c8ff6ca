package tree

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"
)

const (
	// GeohashDefaultLevels is the default depth of a geohash grid.
	GeohashDefaultLevels = 12
	// GeohashMaxLevels is the longest geohash supported.
	GeohashMaxLevels = 24

	geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"
)

var geohashIndex = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(geohashAlphabet); i++ {
		idx[geohashAlphabet[i]] = int8(i)
	}
	return idx
}()

// GeohashTree is the geohash grid. Each character carries five bits, interleaved
// longitude first.
type GeohashTree struct {
	maxLevels int
}

var _ SpatialPrefixTree = (*GeohashTree)(nil)

// NewGeohashTree creates a geohash grid with the given depth.
func NewGeohashTree(maxLevels int) (*GeohashTree, error) {
	if err := checkLevels(KindGeohash, maxLevels, GeohashMaxLevels); err != nil {
		return nil, err
	}
	return &GeohashTree{maxLevels: maxLevels}, nil
}

// Kind implements SpatialPrefixTree.
func (g *GeohashTree) Kind() Kind { return KindGeohash }

// MaxLevels implements SpatialPrefixTree.
func (g *GeohashTree) MaxLevels() int { return g.maxLevels }

// WorldBounds implements SpatialPrefixTree.
func (g *GeohashTree) WorldBounds() r2.Rect { return GeoBounds }

// BranchingFactor implements SpatialPrefixTree.
func (g *GeohashTree) BranchingFactor() int { return len(geohashAlphabet) }

// Root implements SpatialPrefixTree.
func (g *GeohashTree) Root() Cell { return Cell{Bounds: GeoBounds} }

// Subcells implements SpatialPrefixTree. Children come in alphabet order.
func (g *GeohashTree) Subcells(parent Cell) []Cell {
	if parent.Level >= g.maxLevels {
		return nil
	}
	lonFirst := parent.Level%2 == 0
	out := make([]Cell, len(geohashAlphabet))
	for v := range out {
		out[v] = Cell{
			Token:  parent.Token + geohashAlphabet[v:v+1],
			Level:  parent.Level + 1,
			Bounds: refineGeohash(parent.Bounds, v, lonFirst),
		}
	}
	return out
}

// CellAt implements SpatialPrefixTree.
func (g *GeohashTree) CellAt(p r2.Point, level int) Cell {
	level = clampLevel(level, g.maxLevels)
	p = GeoBounds.ClampPoint(p)

	b := GeoBounds
	var sb strings.Builder
	sb.Grow(level)
	for l := range level {
		lon := l%2 == 0
		v := 0
		for bit := 4; bit >= 0; bit-- {
			if lon {
				mid := b.X.Center()
				if p.X > mid {
					v |= 1 << bit
					b.X.Lo = mid
				} else {
					b.X.Hi = mid
				}
			} else {
				mid := b.Y.Center()
				if p.Y > mid {
					v |= 1 << bit
					b.Y.Lo = mid
				} else {
					b.Y.Hi = mid
				}
			}
			lon = !lon
		}
		sb.WriteByte(geohashAlphabet[v])
	}
	return Cell{Token: sb.String(), Level: level, Bounds: b}
}

// Cell implements SpatialPrefixTree.
func (g *GeohashTree) Cell(token string) (Cell, error) {
	if len(token) > g.maxLevels {
		return Cell{}, fmt.Errorf("%w: %q deeper than %d levels", ErrInvalidToken, token, g.maxLevels)
	}
	b := GeoBounds
	for i := 0; i < len(token); i++ {
		v := geohashIndex[token[i]]
		if v < 0 {
			return Cell{}, fmt.Errorf("%w: %q has character %q", ErrInvalidToken, token, token[i])
		}
		b = refineGeohash(b, int(v), i%2 == 0)
	}
	return Cell{Token: token, Level: len(token), Bounds: b}, nil
}

// CellSize implements SpatialPrefixTree.
func (g *GeohashTree) CellSize(level int) r2.Point {
	lonBits := (5*level + 1) / 2
	latBits := 5 * level / 2
	return r2.Point{X: math.Ldexp(360, -lonBits), Y: math.Ldexp(180, -latBits)}
}

// refineGeohash narrows b by the five bits of character value v.
func refineGeohash(b r2.Rect, v int, lonFirst bool) r2.Rect {
	lon := lonFirst
	for bit := 4; bit >= 0; bit-- {
		set := v>>bit&1 == 1
		if lon {
			mid := b.X.Center()
			if set {
				b.X.Lo = mid
			} else {
				b.X.Hi = mid
			}
		} else {
			mid := b.Y.Center()
			if set {
				b.Y.Lo = mid
			} else {
				b.Y.Hi = mid
			}
		}
		lon = !lon
	}
	return b
}
