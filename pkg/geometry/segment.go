package geometry

import (
	"math"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Relative tolerance used to decide whether a ray touches a segment
const segmentEpsilon = 1e-9

// Segment is a line segment between two points. Planar scenes keep both
// endpoints in the z=0 plane.
type Segment struct {
	A, B r3.Vector
	bbox core.AABB
}

// NewSegment creates a segment from its endpoints
func NewSegment(a, b r3.Vector) *Segment {
	return &Segment{A: a, B: b, bbox: core.NewAABBFromPoints(a, b)}
}

// BoundingBox returns the axis-aligned bounding box of the segment
func (s *Segment) BoundingBox() core.AABB {
	return s.bbox
}

// Centroid returns the segment midpoint
func (s *Segment) Centroid() r3.Vector {
	return s.A.Add(s.B).Mul(0.5)
}

// SurfaceArea returns the segment length
func (s *Segment) SurfaceArea() float64 {
	return s.B.Sub(s.A).Norm()
}

// SignedVolume returns the signed area swept from the origin in the xy plane
func (s *Segment) SignedVolume() float64 {
	return 0.5 * (s.A.X*s.B.Y - s.A.Y*s.B.X)
}

// Normal returns the in-plane perpendicular of the segment
func (s *Segment) Normal(uv r2.Point) r3.Vector {
	d := s.B.Sub(s.A)
	n := r3.Vector{X: d.Y, Y: -d.X}
	if n.Norm2() == 0 {
		return d.Ortho()
	}
	return n.Normalize()
}

// Intersect tests the ray against the segment
func (s *Segment) Intersect(r core.Ray, checkOcclusion, countHits bool) []Interaction {
	t, u, hit := IntersectSegment(s.A, s.B, r)
	if !hit {
		return nil
	}
	i := NewInteraction()
	i.Distance = t
	i.Point = r.At(t)
	i.UV = r2.Point{X: u}
	i.Primitive = s
	return []Interaction{i}
}

// FindClosestPoint returns the point of the segment closest to the sphere
// center when it lies within the sphere
func (s *Segment) FindClosestPoint(sphere core.BoundingSphere) (Interaction, bool) {
	p, u := ClosestPointOnSegment(s.A, s.B, sphere.Center)
	d2 := p.Sub(sphere.Center).Norm2()
	if d2 > sphere.R2 {
		return Interaction{}, false
	}
	i := NewInteraction()
	i.Distance = math.Sqrt(d2)
	i.Point = p
	i.UV = r2.Point{X: u}
	i.Primitive = s
	return i, true
}

// Split clips the segment against the plane x[dim] = coord
func (s *Segment) Split(dim int, coord float64) (left, right core.AABB) {
	return clipPolygon([]r3.Vector{s.A, s.B}, dim, coord)
}

// IntersectSegment returns the ray parameter t and segment parameter u where
// r meets segment ab. Crossing is decided by the closest approach of the two
// lines, which is exact for coplanar input; rays collinear with the segment
// hit at the first point of overlap.
func IntersectSegment(a, b r3.Vector, r core.Ray) (t, u float64, hit bool) {
	v := b.Sub(a)
	w0 := r.Origin.Sub(a)
	dd := r.Direction.Dot(r.Direction)
	dv := r.Direction.Dot(v)
	vv := v.Dot(v)
	dw := r.Direction.Dot(w0)
	vw := v.Dot(w0)
	tolerance := segmentEpsilon * (1 + math.Sqrt(w0.Norm2()) + math.Sqrt(vv))

	denom := dd*vv - dv*dv
	if denom > segmentEpsilon*dd*vv {
		t = (dv*vw - vv*dw) / denom
		u = (dd*vw - dv*dw) / denom
		if t < 0 || t > r.TMax || u < 0 || u > 1 {
			return 0, 0, false
		}
		gap := r.At(t).Sub(a.Add(v.Mul(u)))
		if gap.Norm2() > tolerance*tolerance {
			return 0, 0, false
		}
		return t, u, true
	}

	// Parallel: only a collinear ray can touch the segment
	if w0.Cross(r.Direction).Norm2() > tolerance*tolerance*dd {
		return 0, 0, false
	}
	t0 := -dw / dd
	t1 := t0 + dv/dd
	tLo, tHi := math.Min(t0, t1), math.Max(t0, t1)
	if tHi < 0 {
		return 0, 0, false
	}
	t = math.Max(tLo, 0)
	if t > r.TMax {
		return 0, 0, false
	}
	if vv > 0 {
		u = clamp01(r.At(t).Sub(a).Dot(v) / vv)
	}
	return t, u, true
}

// ClosestPointOnSegment returns the point of segment ab closest to p and its
// segment parameter
func ClosestPointOnSegment(a, b, p r3.Vector) (r3.Vector, float64) {
	v := b.Sub(a)
	vv := v.Norm2()
	if vv == 0 {
		return a, 0
	}
	u := clamp01(p.Sub(a).Dot(v) / vv)
	return a.Add(v.Mul(u)), u
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// clipPolygon returns the boxes of the parts of a closed polygon (or a
// segment, given two points) on either side of the plane x[dim] = coord.
func clipPolygon(points []r3.Vector, dim int, coord float64) (left, right core.AABB) {
	left, right = core.EmptyAABB(), core.EmptyAABB()
	n := len(points)
	edges := n
	if n == 2 {
		edges = 1
	}

	for j := 0; j < n; j++ {
		p := points[j]
		pc := core.Axis(p, dim)
		if pc <= coord {
			left = left.ExpandToInclude(p)
		}
		if pc >= coord {
			right = right.ExpandToInclude(p)
		}
	}

	for j := 0; j < edges; j++ {
		p, q := points[j], points[(j+1)%n]
		pc, qc := core.Axis(p, dim), core.Axis(q, dim)
		if (pc < coord && qc > coord) || (pc > coord && qc < coord) {
			t := (coord - pc) / (qc - pc)
			x := core.WithAxis(p.Add(q.Sub(p).Mul(t)), dim, coord)
			left = left.ExpandToInclude(x)
			right = right.ExpandToInclude(x)
		}
	}

	return left, right
}
