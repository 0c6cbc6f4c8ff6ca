// Package strategy turns shapes into index terms and spatial relations into term queries
// using a spatial prefix tree.
//
// # Terms
//
// For a field "shape" a document is indexed with:
//
//   - "shape": the presence term, marking documents that carry the field;
//   - "shape/T": for every cell T of the shape's covering and all ancestors of those cells;
//   - "shape/T+": for cells fully covered by the shape (leaves);
//   - "shape/T*": for cells where refinement stopped at the detail level.
//
// # Relations
//
// Relations read as "query shape R indexed shape":
//
//   - Intersects: the shapes share at least one point.
//   - Disjoint: the document carries the field and does not intersect the query.
//   - Contains: the query contains the indexed shape. Documents reaching into cells on the
//     query's boundary are excluded.
//   - Within: the query lies within the indexed shape, i.e. the document's leaves cover
//     every leaf cell of the query.
//
// All relations are answered at grid resolution. Intersects and Within may return false
// positives near cell boundaries; Disjoint may miss documents there. Contains errs the
// other way: it never returns a document outside the query, but misses documents inside it
// that reach into one of the query's boundary cells. Within also misses documents whose
// covering is coarser than the query's detail level, unless the covering cell is a leaf.
package strategy
