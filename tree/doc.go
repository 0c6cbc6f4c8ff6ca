// Package tree implements spatial prefix trees: hierarchical grids whose cells are named by
// string tokens. A cell's token extends its parent's token by one character, so ancestry is
// a string prefix test.
//
// Two grids are provided:
//
//   - QuadTree: every cell splits into four quadrants named '0' (NW), '1' (NE), '2' (SW)
//     and '3' (SE). World bounds are configurable.
//   - GeohashTree: every cell splits into 32 cells named by the geohash base-32 alphabet,
//     over longitude [-180, 180] and latitude [-90, 90].
//
// Decompose turns a shape into a covering of cells: cells fully inside the shape are
// emitted as leaves, cells on the shape's boundary are refined down to a detail level and
// emitted there as non-leaves.
package tree
