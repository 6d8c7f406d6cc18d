package geometry

import (
	"math"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Sphere is the surface of a sphere. It has no lane layout, so wide trees
// store it as a generic primitive.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center r3.Vector, radius float64) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
	}
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.Splat(s.Radius)
	return core.NewAABB(
		s.Center.Sub(radius),
		s.Center.Add(radius),
	)
}

// Centroid returns the sphere center
func (s *Sphere) Centroid() r3.Vector {
	return s.Center
}

// SurfaceArea returns the area of the sphere surface
func (s *Sphere) SurfaceArea() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SignedVolume returns the enclosed volume
func (s *Sphere) SignedVolume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

// Normal returns the outward normal at the spherical coordinates uv, where u
// is the azimuth over 2*pi and v the polar angle over pi
func (s *Sphere) Normal(uv r2.Point) r3.Vector {
	phi := 2 * math.Pi * uv.X
	theta := math.Pi * uv.Y
	return r3.Vector{
		X: math.Sin(theta) * math.Cos(phi),
		Y: math.Sin(theta) * math.Sin(phi),
		Z: math.Cos(theta),
	}
}

// Intersect returns the nearest crossing of the ray with the sphere surface.
// With countHits both crossings within [0, TMax] are returned, nearest first;
// collect-all callers keep one entry per primitive after sorting.
func (s *Sphere) Intersect(r core.Ray, checkOcclusion, countHits bool) []Interaction {
	// Vector from ray origin to sphere center
	oc := r.Origin.Sub(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := r.Direction.Dot(r.Direction)
	halfB := oc.Dot(r.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil
	}
	sqrtD := math.Sqrt(discriminant)

	var hits []Interaction
	for _, root := range [2]float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
		if root < 0 || root > r.TMax {
			continue
		}
		hits = append(hits, s.interaction(r, root))
		if !countHits || sqrtD == 0 {
			break
		}
	}
	return hits
}

func (s *Sphere) interaction(r core.Ray, root float64) Interaction {
	i := NewInteraction()
	i.Distance = root
	i.Point = r.At(root)
	i.UV = s.uv(i.Point)
	i.Primitive = s
	return i
}

// FindClosestPoint projects the sphere center onto the surface
func (s *Sphere) FindClosestPoint(q core.BoundingSphere) (Interaction, bool) {
	dir := q.Center.Sub(s.Center)
	dist := dir.Norm()
	d := math.Abs(dist - s.Radius)
	if d*d > q.R2 {
		return Interaction{}, false
	}

	if dist == 0 {
		dir, dist = r3.Vector{X: 1}, 1
	}
	p := s.Center.Add(dir.Mul(s.Radius / dist))
	i := NewInteraction()
	i.Distance = d
	i.Point = p
	i.UV = s.uv(p)
	i.Primitive = s
	return i, true
}

// uv returns the spherical coordinates of a point on the surface
func (s *Sphere) uv(p r3.Vector) r2.Point {
	n := p.Sub(s.Center)
	if s.Radius > 0 {
		n = n.Mul(1 / s.Radius)
	}
	phi := math.Atan2(n.Y, n.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return r2.Point{
		X: phi / (2 * math.Pi),
		Y: math.Acos(math.Max(-1, math.Min(1, n.Z))) / math.Pi,
	}
}
