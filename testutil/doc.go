// Package testutil provides testing utilities for geoprefix.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random shapes, computing exact
// bounding-box answers, and verifying search recall.
//
// # Random Shapes
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.Points(1000, testutil.World)
//	rect := rng.Rectangle(testutil.World, 20)
//	poly, _ := rng.Polygon(testutil.World, 8, 10)
//
// # Recall Verification
//
//	want := testutil.ExactIntersects(q.Bounds(), bounds)
//	recall := testutil.ComputeRecall(want, got)
package testutil
