package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sort"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix/shape"
)

// World is the longitude/latitude rectangle.
var World = r2.RectFromPoints(r2.Point{X: -180, Y: -90}, r2.Point{X: 180, Y: 90})

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

func (r *RNG) pointInLocked(b r2.Rect) r2.Point {
	return r2.Point{
		X: b.X.Lo + r.rand.Float64()*b.X.Length(),
		Y: b.Y.Lo + r.rand.Float64()*b.Y.Length(),
	}
}

// PointIn returns a uniformly distributed point inside b.
func (r *RNG) PointIn(b r2.Rect) r2.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointInLocked(b)
}

// Points returns n uniformly distributed point shapes inside b.
func (r *RNG) Points(n int, b r2.Rect) []*shape.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*shape.Point, n)
	for i := range out {
		p := r.pointInLocked(b)
		out[i], _ = shape.NewPoint(p.X, p.Y)
	}
	return out
}

// ClusteredPoints returns n points spread around clusters random centroids with
// Gaussian noise of the given standard deviation, clamped to b.
func (r *RNG) ClusteredPoints(n, clusters int, spread float64, b r2.Rect) []*shape.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	centroids := make([]r2.Point, max(clusters, 1))
	for i := range centroids {
		centroids[i] = r.pointInLocked(b)
	}

	out := make([]*shape.Point, n)
	for i := range out {
		c := centroids[i%len(centroids)]
		p := b.ClampPoint(r2.Point{
			X: c.X + r.rand.NormFloat64()*spread,
			Y: c.Y + r.rand.NormFloat64()*spread,
		})
		out[i], _ = shape.NewPoint(p.X, p.Y)
	}
	return out
}

// Rectangle returns a rectangle inside b whose sides are at most maxSize.
func (r *RNG) Rectangle(b r2.Rect, maxSize float64) *shape.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()

	lo := r.pointInLocked(b)
	hi := b.ClampPoint(r2.Point{
		X: lo.X + r.rand.Float64()*maxSize,
		Y: lo.Y + r.rand.Float64()*maxSize,
	})
	rect, _ := shape.NewRectangle(lo.X, lo.Y, hi.X, hi.Y)
	return rect
}

// Polygon returns a star-shaped polygon with the given number of vertices
// around a random center inside b. Vertex distances vary in (radius/2, radius].
func (r *RNG) Polygon(b r2.Rect, vertices int, radius float64) (*shape.Polygon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vertices = max(vertices, 3)
	inner := b.ExpandedByMargin(-radius)
	if inner.IsEmpty() {
		inner = b
	}
	c := r.pointInLocked(inner)

	angles := make([]float64, vertices)
	for i := range angles {
		angles[i] = r.rand.Float64() * 2 * math.Pi
	}
	sort.Float64s(angles)
	angles = slices.Compact(angles)

	ring := make([]r2.Point, 0, len(angles))
	for _, a := range angles {
		d := radius * (0.5 + 0.5*r.rand.Float64())
		ring = append(ring, b.ClampPoint(r2.Point{X: c.X + d*math.Cos(a), Y: c.Y + d*math.Sin(a)}))
	}
	return shape.NewPolygon(ring)
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// Useful for picking hot query regions.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ExactIntersects returns the sorted ids whose bounding box intersects q.
// For points and rectangles this is the exact Intersects answer.
func ExactIntersects(q r2.Rect, bounds map[string]r2.Rect) []string {
	var out []string
	for id, b := range bounds {
		if q.Intersects(b) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ExactContains returns the sorted ids whose bounding box lies inside q.
func ExactContains(q r2.Rect, bounds map[string]r2.Rect) []string {
	var out []string
	for id, b := range bounds {
		if q.Contains(b) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ComputeRecall returns the fraction of groundTruth found in approximate.
func ComputeRecall(groundTruth, approximate []string) float64 {
	if len(groundTruth) == 0 {
		return 1.0
	}

	found := make(map[string]struct{}, len(approximate))
	for _, id := range approximate {
		found[id] = struct{}{}
	}

	hits := 0
	for _, id := range groundTruth {
		if _, ok := found[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(groundTruth))
}

// ComputePrecision returns the fraction of approximate that is in groundTruth.
func ComputePrecision(groundTruth, approximate []string) float64 {
	return ComputeRecall(approximate, groundTruth)
}
