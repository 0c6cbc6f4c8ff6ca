package shape

import "github.com/golang/geo/r2"

// clipSegment clips the segment a-b against the closed rectangle r (Liang-Barsky) and
// returns the parameter range of the part inside r.
func clipSegment(a, b r2.Point, r r2.Rect) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx, dy := b.X-a.X, b.Y-a.Y

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.X - r.X.Lo, r.X.Hi - a.X, a.Y - r.Y.Lo, r.Y.Hi - a.Y}

	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return t0, t1, true
}

// segmentCrossesInterior reports whether the segment a-b passes through the open interior
// of r. The clipped chord of a convex region is either interior apart from its endpoints
// or lies on the boundary, so testing its midpoint is enough.
func segmentCrossesInterior(a, b r2.Point, r r2.Rect) bool {
	t0, t1, ok := clipSegment(a, b, r)
	if !ok || t1 <= t0 {
		return false
	}
	tm := (t0 + t1) / 2
	m := r2.Point{X: a.X + tm*(b.X-a.X), Y: a.Y + tm*(b.Y-a.Y)}
	return r.InteriorContainsPoint(m)
}
