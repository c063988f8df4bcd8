package main

import "math"

// OBBCorners returns the world-space corners of a width x height box centered
// on center and rotated by rot. Order: front-left, front-right, back-right,
// back-left, where front is +X at rotation 0.
func OBBCorners(center Vec2, width, height, rot float64) [4]Vec2 {
	hw := width / 2
	hh := height / 2
	local := [4]Vec2{{hw, hh}, {hw, -hh}, {-hw, -hh}, {-hw, hh}}
	var out [4]Vec2
	for i, c := range local {
		out[i] = center.Add(c.Rotate(rot))
	}
	return out
}

// AABB is an axis-aligned box given by its minimum and maximum corners
type AABB struct {
	Min, Max Vec2
}

// BoundsOf returns the axis-aligned box enclosing points
func BoundsOf(points []Vec2) AABB {
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// pointInQuad checks if p is inside the convex quad given in winding order
func pointInQuad(p Vec2, q [4]Vec2) bool {
	hasNeg, hasPos := false, false
	for i := range q {
		d := q[(i+1)%4].Sub(q[i]).Cross(p.Sub(q[i]))
		if d < 0 {
			hasNeg = true
		} else if d > 0 {
			hasPos = true
		}
	}
	return !(hasNeg && hasPos)
}

// CornersInCone reports whether the angular span of corners, seen from origin,
// overlaps the cone of +-halfAngle around facing. The span is measured around
// the direction to the corners' centroid, so a span that crosses +-PI relative
// to facing is still handled as one interval.
func CornersInCone(origin, facing Vec2, corners [4]Vec2, halfAngle float64) bool {
	if halfAngle >= math.Pi {
		return true
	}
	if pointInQuad(origin, corners) {
		return true
	}

	var centroid Vec2
	for _, c := range corners {
		centroid = centroid.Add(c)
	}
	axis := centroid.Scale(0.25).Sub(origin)
	center := SignedAngle(facing, axis)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		d := SignedAngle(axis, c.Sub(origin))
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	lo += center
	hi += center

	// the span may now extend past +-PI; test the cone and its two wraps
	for _, shift := range [3]float64{0, 2 * math.Pi, -2 * math.Pi} {
		if lo <= halfAngle+shift && hi >= -halfAngle+shift {
			return true
		}
	}
	return false
}

// RayHitsAABB runs the slab test for a ray from origin along dir (t >= 0)
func RayHitsAABB(origin, dir Vec2, box AABB) bool {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [2]float64{origin.X, origin.Y}
	d := [2]float64{dir.X, dir.Y}
	lo := [2]float64{box.Min.X, box.Min.Y}
	hi := [2]float64{box.Max.X, box.Max.Y}
	for i := 0; i < 2; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return tmax >= math.Max(tmin, 0)
}
