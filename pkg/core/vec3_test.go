package core

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestAxis(t *testing.T) {
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	for axis, want := range []float64{1, 2, 3} {
		require.Equal(t, want, Axis(v, axis))
		require.Equal(t, -1.0, Axis(WithAxis(v, axis, -1), axis))
	}
	require.Equal(t, v, WithAxis(v, 1, 2))
}

func TestMinMaxVec(t *testing.T) {
	a := r3.Vector{X: 1, Y: -2, Z: 3}
	b := r3.Vector{X: 0, Y: 5, Z: 3}
	require.Equal(t, r3.Vector{X: 0, Y: -2, Z: 3}, MinVec(a, b))
	require.Equal(t, r3.Vector{X: 1, Y: 5, Z: 3}, MaxVec(a, b))
	require.Equal(t, r3.Vector{X: 2, Y: 2, Z: 2}, Splat(2))
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name   string
		v      r3.Vector
		finite bool
		nan    bool
	}{
		{"zero", r3.Vector{}, true, false},
		{"infinite", r3.Vector{Y: math.Inf(-1)}, false, false},
		{"nan", r3.Vector{Z: math.NaN()}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.finite, IsFinite(tt.v))
			require.Equal(t, tt.nan, HasNaN(tt.v))
		})
	}
}
