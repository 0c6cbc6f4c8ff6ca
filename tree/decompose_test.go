package tree

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Token
	}
	return out
}

func TestDecompose_Rectangle(t *testing.T) {
	g, err := NewGeohashTree(GeohashMaxLevels)
	require.NoError(t, err)
	q, err := shape.NewEnvelope(r2.Point{X: -45, Y: 45}, r2.Point{X: 45, Y: -45})
	require.NoError(t, err)

	cov, err := Decompose(g, q, 3, CollectOutside())
	require.NoError(t, err)

	assert.Equal(t, 3, cov.Level)
	assert.Equal(t, []string{"7", "e", "k", "s"}, tokens(cov.Leaves()))

	boundary := cov.Boundary()
	assert.Len(t, boundary, 260)
	for _, c := range boundary {
		assert.Equal(t, 3, c.Level)
		assert.NotEqual(t, shape.Disjoint, q.Relate(c.Bounds))
		assert.NotEqual(t, shape.Contains, q.Relate(c.Bounds))
	}
	for _, c := range cov.Outside {
		assert.Equal(t, shape.Disjoint, q.Relate(c.Bounds))
	}
	assert.NotEmpty(t, cov.Outside)

	t.Run("Deterministic", func(t *testing.T) {
		again, err := Decompose(g, q, 3)
		require.NoError(t, err)
		assert.Equal(t, cov.Cells, again.Cells)
		assert.Empty(t, again.Outside)
	})
}

func TestDecompose_PolygonMatchesRectangle(t *testing.T) {
	for name, grid := range grids(t) {
		t.Run(name, func(t *testing.T) {
			r, err := shape.NewRectangle(-45, -45, 45, 45)
			require.NoError(t, err)
			p, err := shape.NewPolygon([]r2.Point{{X: -45, Y: 45}, {X: 45, Y: 45}, {X: 45, Y: -45}, {X: -45, Y: -45}})
			require.NoError(t, err)

			a, err := Decompose(grid, r, 4, CollectOutside())
			require.NoError(t, err)
			b, err := Decompose(grid, p, 4, CollectOutside())
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestDecompose_Point(t *testing.T) {
	g, err := NewGeohashTree(GeohashMaxLevels)
	require.NoError(t, err)
	p, err := shape.NewPoint(-45, -45)
	require.NoError(t, err)

	cov, err := Decompose(g, p, GeohashMaxLevels, CollectOutside())
	require.NoError(t, err)
	require.Len(t, cov.Cells, 1)

	c := cov.Cells[0]
	assert.False(t, c.Leaf)
	assert.Equal(t, GeohashMaxLevels, c.Level)
	assert.Equal(t, "4", c.Token[:1])
	assert.True(t, c.Bounds.ContainsPoint(r2.Point{X: -45, Y: -45}))
	assert.Len(t, cov.Outside, GeohashMaxLevels*31)

	t.Run("CollapsedRectangle", func(t *testing.T) {
		r, err := shape.NewRectangle(-45, -45, -45, -45)
		require.NoError(t, err)
		rc, err := Decompose(g, r, GeohashMaxLevels)
		require.NoError(t, err)
		assert.Equal(t, cov.Cells, rc.Cells)
	})
}

func TestDecompose_Errors(t *testing.T) {
	q, err := NewQuadTree(8)
	require.NoError(t, err)
	r, err := shape.NewRectangle(0, 0, 1, 1)
	require.NoError(t, err)

	_, err = Decompose(q, r, 0)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = Decompose(q, r, 9)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	far, err := shape.NewRectangle(200, 0, 210, 10)
	require.NoError(t, err)
	_, err = Decompose(q, far, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecompose_LeavesAreContained(t *testing.T) {
	q, err := NewQuadTree(10)
	require.NoError(t, err)
	tri, err := shape.NewPolygon([]r2.Point{{X: -100, Y: -50}, {X: 120, Y: -40}, {X: 10, Y: 80}})
	require.NoError(t, err)

	cov, err := Decompose(q, tri, 6)
	require.NoError(t, err)
	require.NotEmpty(t, cov.Leaves())

	for _, c := range cov.Cells {
		if c.Leaf {
			assert.Equal(t, shape.Contains, tri.Relate(c.Bounds))
			assert.LessOrEqual(t, c.Level, 6)
		} else {
			assert.Equal(t, 6, c.Level)
		}
	}
	for i, a := range cov.Cells {
		for _, b := range cov.Cells[i+1:] {
			assert.False(t, a.IsAncestorOf(b) || b.IsAncestorOf(a), "%s and %s nest", a.Token, b.Token)
		}
	}
}
