package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestNew_BuiltinScenes(t *testing.T) {
	for _, info := range ListScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := New(info.ID, 50, 7)
			require.NoError(t, err)
			require.Equal(t, info.ID, s.Name)
			require.Equal(t, info.Planar, s.Planar)
			require.GreaterOrEqual(t, len(s.Primitives), 50)

			bounds := core.EmptyAABB()
			for _, p := range s.Primitives {
				bounds = bounds.Union(p.BoundingBox())
				if s.Planar {
					require.Equal(t, 0.0, p.BoundingBox().Min.Z)
					require.Equal(t, 0.0, p.BoundingBox().Max.Z)
				}
			}
			require.Equal(t, bounds, s.Bounds)
		})
	}
}

func TestNew_IsReproducible(t *testing.T) {
	a, err := New("triangles", 20, 42)
	require.NoError(t, err)
	b, err := New("triangles", 20, 42)
	require.NoError(t, err)
	c, err := New("triangles", 20, 43)
	require.NoError(t, err)

	for i := range a.Primitives {
		require.Equal(t, a.Primitives[i].BoundingBox(), b.Primitives[i].BoundingBox())
	}
	require.NotEqual(t, a.Bounds, c.Bounds)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("teapot", 10, 1)
	require.True(t, errors.IsType(err, core.ErrTypeInvalidConfig))

	_, err = New("segments", -1, 1)
	require.True(t, errors.IsType(err, core.ErrTypeInvalidConfig))

	s, err := New("segments", 0, 1)
	require.NoError(t, err)
	require.Empty(t, s.Primitives)
	require.True(t, s.Bounds.IsEmpty())
}

func TestTriangleGrid(t *testing.T) {
	primitives, err := TriangleGrid(3, 4, 0.5)
	require.NoError(t, err)
	require.Len(t, primitives, 24)

	bounds := core.EmptyAABB()
	for _, p := range primitives {
		bounds = bounds.Union(p.BoundingBox())
	}
	require.InDelta(t, 2.0, bounds.Max.X, 1e-12)
	require.InDelta(t, 1.5, bounds.Max.Y, 1e-12)
}

func TestCollinearSegments(t *testing.T) {
	primitives := CollinearSegments(3, 1, 1)
	require.Len(t, primitives, 3)

	expected := []float64{0, 2, 4}
	for i, p := range primitives {
		segment := p.(*geometry.Segment)
		require.Equal(t, r3.Vector{X: expected[i]}, segment.A)
		require.Equal(t, r3.Vector{X: expected[i] + 1}, segment.B)
	}
}

func TestScatteredSpheres(t *testing.T) {
	primitives := ScatteredSpheres(rand.New(rand.NewSource(5)), 27, 1)
	require.Len(t, primitives, 27)
	require.Equal(t, geometry.KindGeneric, geometry.CommonKind(primitives))

	for _, p := range primitives {
		sphere := p.(*geometry.Sphere)
		require.Greater(t, sphere.Radius, 0.0)
		require.LessOrEqual(t, sphere.Radius, 1.0/3.0+1e-12)
		require.True(t, core.NewAABB(r3.Vector{}, core.Splat(1)).Contains(sphere.Center))
	}
}

func TestQueries(t *testing.T) {
	s, err := New("segments", 100, 3)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	for _, r := range s.Rays(rng, 100) {
		require.NoError(t, r.Validate())
		require.Equal(t, 0.0, r.Origin.Z)
		require.Equal(t, 0.0, r.Direction.Z)
		require.InDelta(t, 1.0, r.Direction.Norm(), 1e-12)
		require.True(t, math.IsInf(r.TMax, 1))
	}

	for _, sphere := range s.Spheres(rng, 100, 0.01) {
		require.NoError(t, sphere.Validate())
		require.Equal(t, 0.01, sphere.R2)
		require.Equal(t, 0.0, sphere.Center.Z)
	}

	triangles, err := New("triangles", 10, 3)
	require.NoError(t, err)
	for _, r := range triangles.Rays(rng, 100) {
		require.InDelta(t, 1.0, r.Direction.Norm(), 1e-12)
	}
}
