package core

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestRay_Validate(t *testing.T) {
	tests := []struct {
		name string
		ray  Ray
		ok   bool
	}{
		{"unbounded", NewRay(r3.Vector{}, r3.Vector{X: 1}), true},
		{"bounded", NewRayWithMax(r3.Vector{}, r3.Vector{X: 1}, 2), true},
		{"zero extent", NewRayWithMax(r3.Vector{}, r3.Vector{X: 1}, 0), true},
		{"infinite origin", NewRay(r3.Vector{X: math.Inf(1)}, r3.Vector{X: 1}), true},
		{"nan origin", NewRay(r3.Vector{X: math.NaN()}, r3.Vector{X: 1}), false},
		{"zero direction", NewRay(r3.Vector{}, r3.Vector{}), false},
		{"infinite direction", NewRay(r3.Vector{}, r3.Vector{Y: math.Inf(1)}), false},
		{"negative extent", NewRayWithMax(r3.Vector{}, r3.Vector{X: 1}, -1), false},
		{"nan extent", NewRayWithMax(r3.Vector{}, r3.Vector{X: 1}, math.NaN()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ray.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, ErrTypeInvalidRay, errors.Type(err))
		})
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(r3.Vector{X: 1}, r3.Vector{Y: 2})
	require.Equal(t, r3.Vector{X: 1, Y: 3}, r.At(1.5))
	require.True(t, math.IsInf(r.InvDirection.X, 1))
	require.Equal(t, 0.5, r.InvDirection.Y)
}

func TestBoundingSphere(t *testing.T) {
	s := NewBoundingSphere(r3.Vector{}, 4)
	require.NoError(t, s.Validate())
	require.Equal(t, 2.0, s.Radius())
	require.Equal(t, NewAABB(Splat(-2), Splat(2)), s.BoundingBox())

	require.True(t, s.Accepts(4))
	require.False(t, s.Accepts(4.0000001))

	unbounded := NewUnboundedSphere(r3.Vector{})
	require.True(t, unbounded.Accepts(1e300))
	require.False(t, unbounded.Accepts(math.Inf(1)))

	for _, bad := range []BoundingSphere{
		NewBoundingSphere(r3.Vector{}, -1),
		NewBoundingSphere(r3.Vector{}, math.NaN()),
		NewBoundingSphere(r3.Vector{Z: math.NaN()}, 1),
	} {
		require.Equal(t, ErrTypeInvalidSphere, errors.Type(bad.Validate()))
	}
}

func TestBoundingSphere_HintAlignment(t *testing.T) {
	s := NewBoundingSphere(r3.Vector{}, 100)
	left := NewAABB(r3.Vector{X: -3, Y: -1}, r3.Vector{X: -1, Y: 1})
	right := NewAABB(r3.Vector{X: 1, Y: -1}, r3.Vector{X: 3, Y: 1})
	hint := r3.Vector{X: 1}
	require.Greater(t, s.HintAlignment(right, hint), s.HintAlignment(left, hint))
	require.Zero(t, s.HintAlignment(right, r3.Vector{}))
}
