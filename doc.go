// Package geoprefix provides an embedded spatial index built on spatial prefix trees.
//
// Shapes (points, rectangles and polygons) are decomposed into cells of a
// hierarchical grid, either a geohash grid or a quad tree. Every cell becomes a
// string term, so the index itself is a plain inverted index and spatial
// relations compile to boolean term queries.
//
// # Quick Start
//
//	ctx := context.Background()
//	ix, _ := geoprefix.New(geoprefix.WithField("location"))
//	defer ix.Close()
//
//	p, _ := shape.NewPoint(13.4, 52.5)
//	_ = ix.Index(ctx, "berlin", p)
//
//	q, _ := shape.NewRectangle(5, 47, 15, 55)
//	ids, _ := ix.Search(ctx, geoprefix.Intersects, q)
//
// # Relations
//
// Relations read as "query R indexed shape":
//
//   - Intersects matches documents sharing at least one cell with the query.
//   - Disjoint matches documents with the field that do not intersect the query.
//   - Contains matches documents lying entirely inside the query.
//   - Within matches documents covering the query.
//
// All relations are approximate at the detail level chosen for the query shape.
// WithPrecision and WithDetailLevel trade term count against accuracy per call.
//
// # Terms
//
// A document indexed under field "geo" carries the presence term "geo", the
// term "geo/<token>" for every cell of its covering and its ancestors, plus
// "geo/<token>+" for cells fully inside the shape and "geo/<token>*" for
// boundary cells at the detail level.
//
// # Persistence
//
// Save and Load write a checksummed, optionally compressed snapshot to any
// blobstore.BlobStore: memory, local directory, Badger, S3 or MinIO.
//
//	store := blobstore.NewLocalStore("./data")
//	_ = ix.Save(ctx, store, "shapes.gpti")
//	ix, _ = geoprefix.Load(ctx, store, "shapes.gpti")
//
// # Observability
//
// Operations report to a MetricsCollector (see package prommetrics) and log
// through a slog-backed Logger.
package geoprefix
