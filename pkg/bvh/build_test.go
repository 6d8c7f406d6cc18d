package bvh

import (
	"math"
	"testing"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

// square returns two triangles covering an axis-aligned unit square in the
// z=0 plane with its lower corner at origin
func square(origin r3.Vector) []geometry.Primitive {
	return []geometry.Primitive{
		geometry.NewTriangle(origin, origin.Add(r3.Vector{X: 1}), origin.Add(r3.Vector{X: 1, Y: 1})),
		geometry.NewTriangle(origin, origin.Add(r3.Vector{X: 1, Y: 1}), origin.Add(r3.Vector{Y: 1})),
	}
}

func TestObjectSplit_SeparatesClusters(t *testing.T) {
	for _, h := range []CostHeuristic{SurfaceArea, OverlapSurfaceArea} {
		t.Run(h.String(), func(t *testing.T) {
			primitives := append(square(r3.Vector{}), square(r3.Vector{X: 10})...)
			primitives = append(primitives, square(r3.Vector{X: 0.5, Y: 0.5})...)

			config := DefaultConfig()
			config.CostHeuristic = h
			config.LeafSize = 1
			b := newBuilder(primitives, config)
			box, centroidBox := b.bounds(0, len(b.references))
			b.rootMeasure = b.measure(box)

			dim, coord, cost, overlap := b.computeObjectSplit(box, centroidBox, 0, len(b.references))
			require.Equal(t, 0, dim)
			require.Greater(t, coord, 1.5)
			require.Less(t, coord, 10.0)
			require.Zero(t, overlap)
			if h == OverlapSurfaceArea {
				require.Negative(t, cost)
			} else {
				require.Positive(t, cost)
			}

			mid := b.performObjectSplit(dim, coord, 0, len(b.references))
			require.Equal(t, 4, mid)
			for _, ref := range b.references[:mid] {
				require.Less(t, ref.centroid.X, 2.0)
			}
		})
	}
}

func TestObjectSplit_DegenerateFallsBack(t *testing.T) {
	// Identical segments have no centroid extent at all
	primitives := make([]geometry.Primitive, 5)
	for i := range primitives {
		primitives[i] = geometry.NewSegment(r3.Vector{}, r3.Vector{X: 1, Y: 1})
	}

	config := DefaultConfig()
	config.LeafSize = 1
	b := newBuilder(primitives, config)
	box, centroidBox := b.bounds(0, len(b.references))

	dim, coord, cost, overlap := b.computeObjectSplit(box, centroidBox, 0, len(b.references))
	require.Equal(t, 2, dim)
	require.Equal(t, 0.0, coord)
	require.Equal(t, math.MaxFloat64, cost)
	require.Zero(t, overlap)

	// Every centroid is on the plane so the partition falls back to the median
	mid := b.performObjectSplit(dim, coord, 0, len(b.references))
	require.Equal(t, 2, mid)
	for i, ref := range b.references {
		require.Equal(t, i, ref.index)
	}
}

func TestSpatialSplit_DuplicatesStraddlingReferences(t *testing.T) {
	primitives := []geometry.Primitive{
		geometry.NewSegment(r3.Vector{}, r3.Vector{X: 4, Y: 4}),       // straddles x = 2
		geometry.NewSegment(r3.Vector{X: 0.5}, r3.Vector{X: 1, Y: 4}), // left
		geometry.NewSegment(r3.Vector{X: 3}, r3.Vector{X: 3.5, Y: 4}), // right
	}

	config := DefaultConfig()
	config.CostHeuristic = OverlapSurfaceArea
	config.LeafSize = 1
	b := newBuilder(primitives, config)

	mid, added, ok := b.performSpatialSplit(0, 2, 0, 3)
	require.True(t, ok)
	require.Equal(t, 2, mid)
	require.Equal(t, 1, added)
	require.Len(t, b.references, 4)

	require.Equal(t, []int{0, 1, 0, 2}, []int{
		b.references[0].index, b.references[1].index, b.references[2].index, b.references[3].index,
	})
	require.Equal(t, core.NewAABB(r3.Vector{}, r3.Vector{X: 2, Y: 2}), b.references[0].box)
	require.Equal(t, core.NewAABB(r3.Vector{X: 2, Y: 2}, r3.Vector{X: 4, Y: 4}), b.references[2].box)

	// A plane that does not shrink one side is refused
	b = newBuilder(primitives, config)
	_, _, ok = b.performSpatialSplit(0, 0.25, 0, 3)
	require.False(t, ok)
	require.Len(t, b.references, 3)
}

func TestSplitReference_BoxFallback(t *testing.T) {
	// A nested aggregate cannot clip itself, so its box is cut instead
	inner, err := New(square(r3.Vector{}), DefaultConfig())
	require.NoError(t, err)

	b := newBuilder([]geometry.Primitive{inner}, DefaultConfig())
	left, right := b.splitReference(b.references[0], 1, 0.25, b.references[0].box)
	require.Equal(t, core.NewAABB(r3.Vector{}, r3.Vector{X: 1, Y: 0.25}), left)
	require.Equal(t, core.NewAABB(r3.Vector{Y: 0.25}, r3.Vector{X: 1, Y: 1}), right)
}
