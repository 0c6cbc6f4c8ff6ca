package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/geoprefix/shape"
)

const (
	// DefaultDistErrPct is the default distance error fraction.
	DefaultDistErrPct = 0.025
	// MaxDistErrPct is the largest accepted distance error fraction.
	MaxDistErrPct = 0.5

	// EarthEquatorMeters is the length of the equator.
	EarthEquatorMeters = 40075016.69
)

// CheckDistErrPct validates a distance error fraction.
func CheckDistErrPct(pct float64) error {
	if math.IsNaN(pct) || pct < 0 || pct > MaxDistErrPct {
		return fmt.Errorf("%w: %v not in [0, %v]", ErrInvalidPrecision, pct, MaxDistErrPct)
	}
	return nil
}

// LevelForPrecision returns the detail level for s: the shallowest level whose cell
// diagonal is at most distErrPct times the diagonal of the shape's bounds. A zero fraction
// or a zero-sized shape selects MaxLevels, and deeper requirements are capped there.
func LevelForPrecision(t SpatialPrefixTree, s shape.Shape, distErrPct float64) (int, error) {
	if err := CheckDistErrPct(distErrPct); err != nil {
		return 0, err
	}
	diag := shape.Diagonal(s)
	if distErrPct == 0 || diag == 0 {
		return t.MaxLevels(), nil
	}
	target := distErrPct * diag
	for l := 1; l <= t.MaxLevels(); l++ {
		if t.CellSize(l).Norm() <= target {
			return l, nil
		}
	}
	return t.MaxLevels(), nil
}

// LevelForDistance returns the shallowest level whose cells are at most dist wide and
// high. Distances below the finest cell select MaxLevels.
func LevelForDistance(t SpatialPrefixTree, dist float64) int {
	if dist <= 0 || math.IsNaN(dist) {
		return t.MaxLevels()
	}
	for l := 1; l <= t.MaxLevels(); l++ {
		s := t.CellSize(l)
		if math.Max(s.X, s.Y) <= dist {
			return l
		}
	}
	return t.MaxLevels()
}

// MetersToDegrees converts a distance along the equator to degrees.
func MetersToDegrees(m float64) float64 {
	return m * 360 / EarthEquatorMeters
}

var distanceUnits = []struct {
	suffix string
	meters float64
}{
	// Longer suffixes first so "nmi" wins over "mi" and "km" over "m".
	{"nmi", 1852},
	{"km", 1000},
	{"mi", 1609.344},
	{"yd", 0.9144},
	{"ft", 0.3048},
	{"in", 0.0254},
	{"cm", 0.01},
	{"mm", 0.001},
	{"m", 1},
}

// ParseDistance parses a distance such as "50m", "1.5km", "2mi" or "10nmi" into meters.
// A bare number is taken as meters.
func ParseDistance(s string) (float64, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	factor := 1.0
	for _, u := range distanceUnits {
		if strings.HasSuffix(str, u.suffix) {
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			factor = u.meters
			break
		}
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: distance %q", ErrInvalidPrecision, s)
	}
	return v * factor, nil
}

// LevelsForDistance returns the depth a grid of the given kind needs so that its finest
// cells are no larger than meters, capped at the grid's limit.
func LevelsForDistance(kind Kind, meters float64) (int, error) {
	var grid SpatialPrefixTree
	var err error
	switch kind {
	case KindQuad:
		grid, err = NewQuadTree(QuadMaxLevels)
	case KindGeohash:
		grid, err = NewGeohashTree(GeohashMaxLevels)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return 0, err
	}
	return LevelForDistance(grid, MetersToDegrees(meters)), nil
}
