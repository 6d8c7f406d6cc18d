package core

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/golang/geo/r3"
)

// BoundingSphere is the search region of a closest point query. R2 is the
// squared radius; a query only ever shrinks it.
type BoundingSphere struct {
	Center r3.Vector
	R2     float64
}

// NewBoundingSphere creates a sphere from a center and a squared radius
func NewBoundingSphere(center r3.Vector, r2 float64) BoundingSphere {
	return BoundingSphere{Center: center, R2: r2}
}

// NewUnboundedSphere creates a sphere with an infinite radius, matching every
// primitive in the scene
func NewUnboundedSphere(center r3.Vector) BoundingSphere {
	return BoundingSphere{Center: center, R2: math.Inf(1)}
}

// Radius returns the sphere radius
func (s BoundingSphere) Radius() float64 {
	return math.Sqrt(s.R2)
}

// BoundingBox returns the box enclosing the sphere
func (s BoundingSphere) BoundingBox() AABB {
	r := s.Radius()
	return NewAABB(s.Center.Sub(Splat(r)), s.Center.Add(Splat(r)))
}

// Validate reports spheres that cannot be searched
func (s BoundingSphere) Validate() error {
	if HasNaN(s.Center) || math.IsNaN(s.R2) || s.R2 < 0 {
		return errors.New("bounding sphere must have a real center and non-negative radius").
			WithType(ErrTypeInvalidSphere).
			WithTag("center", s.Center.String()).
			WithTag("r2", s.R2)
	}
	return nil
}

// Accepts reports whether a box at squared distance d2 from the center may
// hold points within the sphere. Empty boxes are infinitely far away and are
// never accepted, even by an unbounded sphere.
func (s BoundingSphere) Accepts(d2 float64) bool {
	return d2 <= s.R2 && !math.IsInf(d2, 1)
}

// HintAlignment scores how far the box center lies along hint as seen from
// the sphere center. It orders boxes at equal distance.
func (s BoundingSphere) HintAlignment(box AABB, hint r3.Vector) float64 {
	return box.Center().Sub(s.Center).Dot(hint)
}
