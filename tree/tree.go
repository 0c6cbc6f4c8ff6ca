package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

var (
	// ErrInvalidMaxLevels is returned when maxLevels is outside the range a grid supports.
	ErrInvalidMaxLevels = errors.New("tree: invalid max levels")

	// ErrInvalidBounds is returned for empty, inverted or non-finite world bounds.
	ErrInvalidBounds = errors.New("tree: invalid world bounds")

	// ErrInvalidToken is returned when a token does not name a cell of the grid.
	ErrInvalidToken = errors.New("tree: invalid token")

	// ErrInvalidLevel is returned when a detail level is outside [1, maxLevels].
	ErrInvalidLevel = errors.New("tree: invalid level")

	// ErrInvalidPrecision is returned for a distance error fraction outside [0, 0.5].
	ErrInvalidPrecision = errors.New("tree: invalid precision")

	// ErrOutOfBounds is returned when a shape lies entirely outside the world bounds.
	ErrOutOfBounds = errors.New("tree: shape outside world bounds")

	// ErrUnknownKind is returned for an unknown grid kind.
	ErrUnknownKind = errors.New("tree: unknown kind")
)

// Kind selects a grid implementation.
type Kind string

const (
	KindQuad    Kind = "quadtree"
	KindGeohash Kind = "geohash"
)

// ParseKind parses a grid kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadtree", "quad":
		return KindQuad, nil
	case "geohash":
		return KindGeohash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// GeoBounds is the longitude/latitude world.
var GeoBounds = r2.Rect{
	X: r1.Interval{Lo: -180, Hi: 180},
	Y: r1.Interval{Lo: -90, Hi: 90},
}

// SpatialPrefixTree is a recursive decomposition of the plane into named cells.
// Implementations are immutable and safe for concurrent use.
type SpatialPrefixTree interface {
	// Kind returns the grid kind.
	Kind() Kind
	// MaxLevels returns the deepest level of the grid.
	MaxLevels() int
	// WorldBounds returns the bounds of the root cell.
	WorldBounds() r2.Rect
	// BranchingFactor returns the number of children of every non-terminal cell.
	BranchingFactor() int
	// Root returns the level-0 cell.
	Root() Cell
	// Subcells returns the children of parent in token order, or nil at MaxLevels.
	Subcells(parent Cell) []Cell
	// CellAt returns the cell at level containing p. A coordinate on a split line belongs
	// to the lower cell.
	CellAt(p r2.Point, level int) Cell
	// Cell decodes a token.
	Cell(token string) (Cell, error)
	// CellSize returns the width and height of cells at level.
	CellSize(level int) r2.Point
}

// Config selects and configures a grid.
type Config struct {
	Kind Kind
	// MaxLevels defaults to the grid's default when zero.
	MaxLevels int
	// Bounds applies to the quad tree only; nil selects GeoBounds.
	Bounds *r2.Rect
}

// New builds the grid described by cfg.
func New(cfg Config) (SpatialPrefixTree, error) {
	switch cfg.Kind {
	case KindQuad:
		levels := cfg.MaxLevels
		if levels == 0 {
			levels = QuadDefaultLevels
		}
		var opts []QuadOption
		if cfg.Bounds != nil {
			opts = append(opts, WithBounds(*cfg.Bounds))
		}
		return NewQuadTree(levels, opts...)
	case KindGeohash, "":
		if cfg.Bounds != nil && *cfg.Bounds != GeoBounds {
			return nil, fmt.Errorf("%w: geohash bounds are fixed", ErrInvalidBounds)
		}
		levels := cfg.MaxLevels
		if levels == 0 {
			levels = GeohashDefaultLevels
		}
		return NewGeohashTree(levels)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

func checkLevels(kind Kind, levels, limit int) error {
	if levels < 1 || levels > limit {
		return fmt.Errorf("%w: %s supports 1..%d, got %d", ErrInvalidMaxLevels, kind, limit, levels)
	}
	return nil
}

func clampLevel(level, maxLevels int) int {
	return max(0, min(level, maxLevels))
}
