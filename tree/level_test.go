package tree

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForPrecision(t *testing.T) {
	g, err := NewGeohashTree(GeohashMaxLevels)
	require.NoError(t, err)

	query, err := shape.NewEnvelope(r2.Point{X: -45, Y: 45}, r2.Point{X: 45, Y: -45})
	require.NoError(t, err)
	small, err := shape.NewEnvelope(r2.Point{X: -50, Y: 50}, r2.Point{X: -38, Y: 38})
	require.NoError(t, err)
	point, err := shape.NewPoint(-30, -30)
	require.NoError(t, err)

	tests := []struct {
		name  string
		shape shape.Shape
		pct   float64
		want  int
	}{
		{"query rectangle", query, DefaultDistErrPct, 3},
		{"small rectangle", small, DefaultDistErrPct, 4},
		{"coarse", small, 0.5, 3},
		{"exact", small, 0, GeohashMaxLevels},
		{"point", point, DefaultDistErrPct, GeohashMaxLevels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LevelForPrecision(g, tt.shape, tt.pct)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Exhaustion", func(t *testing.T) {
		shallow, err := NewGeohashTree(2)
		require.NoError(t, err)
		got, err := LevelForPrecision(shallow, small, DefaultDistErrPct)
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, pct := range []float64{-0.1, 0.51} {
			_, err := LevelForPrecision(g, query, pct)
			assert.ErrorIs(t, err, ErrInvalidPrecision)
		}
	})
}

func TestLevelForDistance(t *testing.T) {
	g, err := NewGeohashTree(GeohashMaxLevels)
	require.NoError(t, err)

	assert.Equal(t, 1, LevelForDistance(g, 45))
	assert.Equal(t, 2, LevelForDistance(g, 44))
	assert.Equal(t, GeohashMaxLevels, LevelForDistance(g, 0))

	levels, err := LevelsForDistance(KindGeohash, 50)
	require.NoError(t, err)
	assert.Equal(t, 8, levels)

	levels, err = LevelsForDistance(KindQuad, 50)
	require.NoError(t, err)
	assert.Equal(t, 20, levels)
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"50m", 50},
		{"1km", 1000},
		{"1.5 km", 1500},
		{"2mi", 3218.688},
		{"1nmi", 1852},
		{"10mm", 0.01},
		{"12", 12},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDistance(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	for _, in := range []string{"", "km", "-1m", "fast"} {
		_, err := ParseDistance(in)
		assert.ErrorIs(t, err, ErrInvalidPrecision, in)
	}
}
