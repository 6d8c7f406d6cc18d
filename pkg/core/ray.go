package core

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/golang/geo/r3"
)

// Ray represents a ray with an origin, a direction and a mutable upper bound
// on the parametric distance. Traversals shrink TMax as closer hits are found;
// it never grows.
type Ray struct {
	Origin       r3.Vector
	Direction    r3.Vector
	InvDirection r3.Vector // Componentwise 1/Direction, precomputed for slab tests
	TMax         float64
}

// NewRay creates a new unbounded ray
func NewRay(origin, direction r3.Vector) Ray {
	return NewRayWithMax(origin, direction, math.Inf(1))
}

// NewRayWithMax creates a new ray bounded by tMax
func NewRayWithMax(origin, direction r3.Vector, tMax float64) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		InvDirection: r3.Vector{
			X: 1 / direction.X,
			Y: 1 / direction.Y,
			Z: 1 / direction.Z,
		},
		TMax: tMax,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Validate reports rays that no traversal can answer correctly.
func (r Ray) Validate() error {
	if HasNaN(r.Origin) {
		return errors.New("ray origin is not a number").
			WithType(ErrTypeInvalidRay).
			WithTag("origin", r.Origin.String())
	}
	if !IsFinite(r.Direction) || r.Direction.Norm2() == 0 {
		return errors.New("ray direction must be finite and non-zero").
			WithType(ErrTypeInvalidRay).
			WithTag("direction", r.Direction.String())
	}
	if math.IsNaN(r.TMax) || r.TMax < 0 {
		return errors.New("ray tMax must be non-negative").
			WithType(ErrTypeInvalidRay).
			WithTag("t_max", r.TMax)
	}
	return nil
}
