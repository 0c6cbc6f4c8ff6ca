// Package shape provides the geometry used by the prefix tree: points, axis-aligned
// rectangles and polygons, each able to report how it relates to a grid cell.
//
// Coordinates are planar (x = longitude, y = latitude for geographic data). Relations use
// closed-set semantics, so a shape that only touches a cell along an edge or at a corner
// intersects it.
//
// Shapes are backed by github.com/twpayne/go-geom and can be read from and written to
// GeoJSON and WKB:
//
//	s, err := shape.ParseGeoJSON([]byte(`{"type":"Point","coordinates":[-30,-30]}`))
//	if err != nil {
//	    return err
//	}
//	rel := s.Relate(cellBounds)
package shape
