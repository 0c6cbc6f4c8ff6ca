package testutil

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints(t *testing.T) {
	rng := NewRNG(4711)
	b := r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 10, Y: 5})

	pts := rng.Points(100, b)
	require.Len(t, pts, 100)
	for _, p := range pts {
		require.NotNil(t, p)
		assert.True(t, b.ContainsPoint(p.Center()))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(42)
	a := rng.PointIn(World)
	rng.Reset()
	assert.Equal(t, a, rng.PointIn(World))
	assert.Equal(t, int64(42), rng.Seed())
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)
	pts := rng.ClusteredPoints(200, 4, 1.5, World)
	require.Len(t, pts, 200)
	for _, p := range pts {
		assert.True(t, World.ContainsPoint(p.Center()))
	}
}

func TestRectangle(t *testing.T) {
	rng := NewRNG(4711)
	for range 50 {
		r := rng.Rectangle(World, 20)
		require.NotNil(t, r)
		assert.True(t, World.Contains(r.Bounds()))
		assert.LessOrEqual(t, r.Bounds().X.Length(), 20.0)
		assert.LessOrEqual(t, r.Bounds().Y.Length(), 20.0)
	}
}

func TestPolygon(t *testing.T) {
	rng := NewRNG(4711)
	for range 20 {
		p, err := rng.Polygon(World, 8, 10)
		require.NoError(t, err)
		assert.True(t, World.Contains(p.Bounds()))
	}
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)
	counts := make([]int, 10)
	for range 1000 {
		counts[rng.Zipf(10, 1.5)]++
	}
	assert.Greater(t, counts[0], counts[9])
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestExact(t *testing.T) {
	bounds := map[string]r2.Rect{
		"in":      r2.RectFromPoints(r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2}),
		"overlap": r2.RectFromPoints(r2.Point{X: 9, Y: 9}, r2.Point{X: 11, Y: 11}),
		"out":     r2.RectFromPoints(r2.Point{X: 20, Y: 20}),
	}
	q := r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: 10, Y: 10})

	assert.Equal(t, []string{"in", "overlap"}, ExactIntersects(q, bounds))
	assert.Equal(t, []string{"in"}, ExactContains(q, bounds))
}

func TestComputeRecall(t *testing.T) {
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.5, ComputeRecall([]string{"a", "b"}, []string{"a", "c"}))
	assert.Equal(t, 1.0, ComputeRecall([]string{"a"}, []string{"a", "c"}))
	assert.Equal(t, 0.5, ComputePrecision([]string{"a"}, []string{"a", "c"}))
}
