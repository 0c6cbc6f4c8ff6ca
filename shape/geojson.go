package shape

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// Feature is a shape with an optional identifier and properties.
type Feature struct {
	ID         string
	Shape      Shape
	Properties map[string]any
}

// FromGeom converts a go-geom geometry into a Shape.
func FromGeom(g geom.T) (Shape, error) {
	switch v := g.(type) {
	case *geom.Point:
		if v.Empty() {
			return nil, fmt.Errorf("%w: empty point", ErrUnsupportedGeometry)
		}
		return NewPoint(v.X(), v.Y())
	case *geom.Polygon:
		return NewPolygonFromGeom(v)
	case nil:
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
}

// ParseGeoJSON decodes a GeoJSON geometry.
func ParseGeoJSON(data []byte) (Shape, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("shape: decode geojson: %w", err)
	}
	return FromGeom(g)
}

// MarshalGeoJSON encodes the shape as a GeoJSON geometry.
func MarshalGeoJSON(s Shape) ([]byte, error) {
	return geojson.Marshal(s.Geom())
}

// ParseWKB decodes a well-known-binary geometry.
func ParseWKB(data []byte) (Shape, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("shape: decode wkb: %w", err)
	}
	return FromGeom(g)
}

// MarshalWKB encodes the shape as little-endian well-known binary.
func MarshalWKB(s Shape) ([]byte, error) {
	return wkb.Marshal(s.Geom(), wkb.NDR)
}

// ParseFeatures decodes a GeoJSON FeatureCollection, a single Feature or a bare geometry.
// Features without an id keep an empty ID.
func ParseFeatures(data []byte) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := gojson.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("shape: decode geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := gojson.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("shape: decode feature collection: %w", err)
		}
		out := make([]Feature, 0, len(fc.Features))
		for i, f := range fc.Features {
			feat, err := fromFeature(f)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			out = append(out, feat)
		}
		return out, nil
	case "Feature":
		var f geojson.Feature
		if err := gojson.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("shape: decode feature: %w", err)
		}
		feat, err := fromFeature(&f)
		if err != nil {
			return nil, err
		}
		return []Feature{feat}, nil
	default:
		s, err := ParseGeoJSON(data)
		if err != nil {
			return nil, err
		}
		return []Feature{{Shape: s}}, nil
	}
}

func fromFeature(f *geojson.Feature) (Feature, error) {
	s, err := FromGeom(f.Geometry)
	if err != nil {
		return Feature{}, err
	}
	return Feature{ID: f.ID, Shape: s, Properties: f.Properties}, nil
}
