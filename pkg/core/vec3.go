package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// Dim is the number of spatial dimensions handled by the index. Planar
// scenes live in the z=0 plane.
const Dim = 3

// Axis returns the component of v along the given axis (0=X, 1=Y, 2=Z)
func Axis(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithAxis returns a copy of v with the component along axis replaced by value
func WithAxis(v r3.Vector, axis int, value float64) r3.Vector {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// MinVec returns the componentwise minimum of two vectors
func MinVec(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxVec returns the componentwise maximum of two vectors
func MaxVec(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Splat returns a vector with all components set to s
func Splat(s float64) r3.Vector {
	return r3.Vector{X: s, Y: s, Z: s}
}

// IsFinite reports whether every component of v is finite
func IsFinite(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// HasNaN reports whether any component of v is NaN
func HasNaN(v r3.Vector) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
