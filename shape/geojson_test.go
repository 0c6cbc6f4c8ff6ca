package shape

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestParseGeoJSON(t *testing.T) {
	t.Run("Point", func(t *testing.T) {
		s, err := ParseGeoJSON([]byte(`{"type":"Point","coordinates":[-30,-30]}`))
		require.NoError(t, err)
		p, ok := s.(*Point)
		require.True(t, ok)
		assert.Equal(t, -30.0, p.X())
		assert.Equal(t, -30.0, p.Y())
	})

	t.Run("Polygon", func(t *testing.T) {
		s, err := ParseGeoJSON([]byte(`{"type":"Polygon","coordinates":[[[-45,45],[45,45],[45,-45],[-45,-45],[-45,45]]]}`))
		require.NoError(t, err)
		assert.Equal(t, KindPolygon, s.Kind())
		assert.Equal(t, rect(-45, -45, 45, 45), s.Bounds())
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := ParseGeoJSON([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))
		assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseGeoJSON([]byte(`{"type":`))
		assert.Error(t, err)
	})
}

func TestWKBRoundTrip(t *testing.T) {
	r, err := NewRectangle(-50, 38, -38, 50)
	require.NoError(t, err)

	data, err := MarshalWKB(r)
	require.NoError(t, err)

	s, err := ParseWKB(data)
	require.NoError(t, err)
	assert.Equal(t, KindPolygon, s.Kind(), "rectangles are encoded as polygons")
	assert.Equal(t, r.Bounds(), s.Bounds())
}

func TestMarshalGeoJSON(t *testing.T) {
	p, err := NewPoint(1.5, 2.5)
	require.NoError(t, err)

	data, err := MarshalGeoJSON(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[1.5,2.5]}`, string(data))
}

func TestParseFeatures(t *testing.T) {
	t.Run("FeatureCollection", func(t *testing.T) {
		data := []byte(`{"type":"FeatureCollection","features":[
			{"type":"Feature","id":"1","geometry":{"type":"Point","coordinates":[-30,-30]},"properties":{"name":"a"}},
			{"type":"Feature","id":4,"geometry":{"type":"Polygon","coordinates":[[[-50,50],[-38,50],[-38,38],[-50,38],[-50,50]]]},"properties":null}
		]}`)
		feats, err := ParseFeatures(data)
		require.NoError(t, err)
		require.Len(t, feats, 2)
		assert.Equal(t, "1", feats[0].ID)
		assert.Equal(t, "a", feats[0].Properties["name"])
		assert.Equal(t, "4", feats[1].ID)
		assert.Equal(t, rect(-50, 38, -38, 50), feats[1].Shape.Bounds())
	})

	t.Run("Feature", func(t *testing.T) {
		feats, err := ParseFeatures([]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`))
		require.NoError(t, err)
		require.Len(t, feats, 1)
		assert.Empty(t, feats[0].ID)
	})

	t.Run("Geometry", func(t *testing.T) {
		feats, err := ParseFeatures([]byte(`{"type":"Point","coordinates":[1,2]}`))
		require.NoError(t, err)
		require.Len(t, feats, 1)
		assert.Equal(t, KindPoint, feats[0].Shape.Kind())
	})
}

func TestFromGeom(t *testing.T) {
	g := geom.NewPolygon(geom.XYZ).MustSetCoords([][]geom.Coord{{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 0, 1}}})
	s, err := FromGeom(g)
	require.NoError(t, err)
	assert.Equal(t, rect(0, 0, 1, 1), s.Bounds())

	poly := s.(*Polygon)
	assert.True(t, poly.ContainsPoint(r2.Point{X: 0.9, Y: 0.1}))

	_, err = FromGeom(geom.NewMultiPoint(geom.XY))
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}
