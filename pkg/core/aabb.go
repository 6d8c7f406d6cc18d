package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min r3.Vector // Minimum corner
	Max r3.Vector // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max r3.Vector) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the identity box for Union: it contains nothing and
// expanding it by any box yields that box.
func EmptyAABB() AABB {
	return AABB{Min: Splat(math.Inf(1)), Max: Splat(math.Inf(-1))}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...r3.Vector) AABB {
	box := EmptyAABB()
	for _, point := range points {
		box = box.ExpandToInclude(point)
	}
	return box
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// IsEmpty reports whether the box contains no point
func (aabb AABB) IsEmpty() bool {
	return !aabb.IsValid()
}

// ExpandToInclude returns the box grown to contain point p
func (aabb AABB) ExpandToInclude(p r3.Vector) AABB {
	return AABB{Min: MinVec(aabb.Min, p), Max: MaxVec(aabb.Max, p)}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: MinVec(aabb.Min, other.Min), Max: MaxVec(aabb.Max, other.Max)}
}

// Intersect returns the overlap of two boxes. The result is empty (IsValid
// false) when the boxes are disjoint.
func (aabb AABB) Intersect(other AABB) AABB {
	return AABB{Min: MaxVec(aabb.Min, other.Min), Max: MinVec(aabb.Max, other.Max)}
}

// Overlaps reports whether the two boxes share at least one point
func (aabb AABB) Overlaps(other AABB) bool {
	return aabb.Intersect(other).IsValid()
}

// Contains reports whether p lies inside the box (boundary included)
func (aabb AABB) Contains(p r3.Vector) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() r3.Vector {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the size (extent) of the AABB along each axis. An empty box
// has zero extent.
func (aabb AABB) Size() r3.Vector {
	if aabb.IsEmpty() {
		return r3.Vector{}
	}
	return aabb.Max.Sub(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// Volume returns the volume of the AABB
func (aabb AABB) Volume() float64 {
	size := aabb.Size()
	return size.X * size.Y * size.Z
}

// RawSurfaceArea is SurfaceArea without clamping inverted extents to zero.
// The sign and magnitude of an inverted box measure how far apart two
// disjoint boxes are.
func (aabb AABB) RawSurfaceArea() float64 {
	size := aabb.Max.Sub(aabb.Min)
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// RawVolume is Volume without clamping inverted extents to zero
func (aabb AABB) RawVolume() float64 {
	size := aabb.Max.Sub(aabb.Min)
	return size.X * size.Y * size.Z
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := Splat(amount)
	return AABB{
		Min: aabb.Min.Sub(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// Hit tests a ray against the box using the slab method and returns the
// parametric entry and exit distances clipped to [0, ray.TMax].
func (aabb AABB) Hit(ray Ray) (tNear, tFar float64, hit bool) {
	tNear, tFar = 0, ray.TMax
	for axis := 0; axis < Dim; axis++ {
		min := Axis(aabb.Min, axis)
		max := Axis(aabb.Max, axis)
		origin := Axis(ray.Origin, axis)
		direction := Axis(ray.Direction, axis)

		// Ray is parallel to this slab
		if direction == 0 {
			if origin < min || origin > max {
				return 0, 0, false
			}
			continue
		}

		// Pick the near/far planes by direction sign so an inverted box
		// always produces t1 > t2
		invDirection := Axis(ray.InvDirection, axis)
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection
		if direction < 0 {
			t1, t2 = t2, t1
		}

		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, 0, false
		}
	}

	return tNear, tFar, true
}

// SquaredDistance returns the squared distances from p to the nearest and
// farthest points of the box. An empty box is infinitely far away.
func (aabb AABB) SquaredDistance(p r3.Vector) (dMin, dMax float64) {
	if aabb.IsEmpty() {
		return math.Inf(1), math.Inf(1)
	}
	u := aabb.Min.Sub(p)
	v := p.Sub(aabb.Max)
	dMin = MaxVec(MaxVec(u, v), r3.Vector{}).Norm2()
	dMax = MinVec(u, v).Norm2()
	return dMin, dMax
}
