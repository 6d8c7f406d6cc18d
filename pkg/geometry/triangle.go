package geometry

import (
	"math"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 r3.Vector // The three vertices
	normal     r3.Vector // Cached normal vector
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 r3.Vector) *Triangle {
	t := &Triangle{
		V0: v0,
		V1: v1,
		V2: v2,
	}

	// Precompute normal and bounding box for efficiency
	t.computeNormal()
	t.computeBoundingBox()

	return t
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	n := edge1.Cross(edge2)
	if n.Norm2() > 0 {
		n = n.Normalize()
	}
	t.normal = n
}

// computeBoundingBox calculates and caches the triangle's bounding box
func (t *Triangle) computeBoundingBox() {
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Centroid returns the average of the vertices
func (t *Triangle) Centroid() r3.Vector {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// SurfaceArea returns the triangle area
func (t *Triangle) SurfaceArea() float64 {
	return 0.5 * t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)).Norm()
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// origin and the triangle
func (t *Triangle) SignedVolume() float64 {
	return t.V0.Dot(t.V1.Cross(t.V2)) / 6.0
}

// Normal returns the triangle's face normal
func (t *Triangle) Normal(uv r2.Point) r3.Vector {
	return t.normal
}

// Intersect tests the ray against the triangle
func (t *Triangle) Intersect(r core.Ray, checkOcclusion, countHits bool) []Interaction {
	d, uv, hit := IntersectTriangle(t.V0, t.V1, t.V2, r)
	if !hit {
		return nil
	}
	i := NewInteraction()
	i.Distance = d
	i.Point = r.At(d)
	i.UV = uv
	i.Primitive = t
	return []Interaction{i}
}

// FindClosestPoint returns the point of the triangle closest to the sphere
// center when it lies within the sphere
func (t *Triangle) FindClosestPoint(s core.BoundingSphere) (Interaction, bool) {
	p, uv := ClosestPointOnTriangle(t.V0, t.V1, t.V2, s.Center)
	d2 := p.Sub(s.Center).Norm2()
	if d2 > s.R2 {
		return Interaction{}, false
	}
	i := NewInteraction()
	i.Distance = math.Sqrt(d2)
	i.Point = p
	i.UV = uv
	i.Primitive = t
	return i, true
}

// BarycentricCoordinates returns the weights (u, v) of V1 and V2 for the
// projection of p onto the triangle plane
func (t *Triangle) BarycentricCoordinates(p r3.Vector) r2.Point {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	ep := p.Sub(t.V0)
	d00 := e1.Dot(e1)
	d01 := e1.Dot(e2)
	d11 := e2.Dot(e2)
	d20 := ep.Dot(e1)
	d21 := ep.Dot(e2)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return r2.Point{}
	}
	return r2.Point{
		X: (d11*d20 - d01*d21) / denom,
		Y: (d00*d21 - d01*d20) / denom,
	}
}

// Split clips the triangle against the plane x[dim] = coord
func (t *Triangle) Split(dim int, coord float64) (left, right core.AABB) {
	return clipPolygon([]r3.Vector{t.V0, t.V1, t.V2}, dim, coord)
}

// IntersectTriangle tests a ray against triangle v0v1v2 using the
// Moller-Trumbore algorithm. uv are the barycentric weights of v1 and v2.
func IntersectTriangle(v0, v1, v2 r3.Vector, r core.Ray) (float64, r2.Point, bool) {
	const epsilon = 1e-12

	// Calculate two edge vectors
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	// Calculate determinant
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return 0, r2.Point{}, false
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)

	// Check if intersection is outside triangle
	if u < 0.0 || u > 1.0 {
		return 0, r2.Point{}, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)

	// Check if intersection is outside triangle
	if v < 0.0 || u+v > 1.0 {
		return 0, r2.Point{}, false
	}

	// Calculate t parameter and check it is within the ray extent
	t := f * edge2.Dot(q)
	if t < 0 || t > r.TMax {
		return 0, r2.Point{}, false
	}

	return t, r2.Point{X: u, Y: v}, true
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p and
// its barycentric weights of b and c, classifying p against the Voronoi
// regions of the vertices and edges.
func ClosestPointOnTriangle(a, b, c, p r3.Vector) (r3.Vector, r2.Point) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, r2.Point{}
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, r2.Point{X: 1}
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, r2.Point{Y: 1}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), r2.Point{X: v}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), r2.Point{Y: w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), r2.Point{X: 1 - w, Y: w}
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), r2.Point{X: v, Y: w}
}
