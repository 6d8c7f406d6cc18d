package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

// nestedAggregate is a primitive that claims to be an aggregate so that
// stamping can be checked without a real index
type nestedAggregate struct {
	*Segment
}

func (nestedAggregate) IntersectFromNode(r *core.Ray, is *[]Interaction, nodeStartIndex, aggregateIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) (int, error) {
	return 0, nil
}

func (nestedAggregate) FindClosestPointFromNode(s *core.BoundingSphere, i *Interaction, nodeStartIndex, aggregateIndex int,
	boundaryHint r3.Vector, nodesVisited *int) (bool, error) {
	return false, nil
}

func TestInteraction_NewInteraction(t *testing.T) {
	i := NewInteraction()
	require.True(t, math.IsInf(i.Distance, 1))
	require.Equal(t, -1, i.PrimitiveIndex)
	require.Equal(t, -1, i.AggregateIndex)
	require.Nil(t, i.Primitive)
}

func TestInteraction_Stamp(t *testing.T) {
	segment := NewSegment(r3.Vector{}, r3.Vector{X: 1})

	i := NewInteraction()
	i.Stamp(segment, 3, 7)
	require.Equal(t, 3, i.PrimitiveIndex)
	require.Equal(t, 7, i.AggregateIndex)
	require.Equal(t, Primitive(segment), i.Primitive)

	// Interactions from a nested aggregate keep the inner stamp
	inner := NewInteraction()
	inner.Stamp(segment, 1, 2)
	inner.Stamp(nestedAggregate{Segment: segment}, 5, 9)
	require.Equal(t, 1, inner.PrimitiveIndex)
	require.Equal(t, 2, inner.AggregateIndex)
}

func TestInteraction_ComputeNormal(t *testing.T) {
	i := NewInteraction()
	i.ComputeNormal()
	require.Equal(t, r3.Vector{}, i.Normal)

	i.Primitive = NewSegment(r3.Vector{}, r3.Vector{X: 1})
	i.ComputeNormal()
	require.Equal(t, r3.Vector{Y: -1}, i.Normal)
}

func TestInteraction_SortAndRemoveDuplicates(t *testing.T) {
	is := []Interaction{
		{Distance: 3, PrimitiveIndex: 2, AggregateIndex: 0},
		{Distance: 1, PrimitiveIndex: 1, AggregateIndex: 0},
		{Distance: 2, PrimitiveIndex: 2, AggregateIndex: 0},
		{Distance: 1, PrimitiveIndex: 0, AggregateIndex: 0},
		{Distance: 1, PrimitiveIndex: 0, AggregateIndex: 1},
		{Distance: 4, PrimitiveIndex: 1, AggregateIndex: 0},
	}

	SortInteractions(is)
	is = RemoveDuplicates(is)

	require.Len(t, is, 4)
	expected := []struct {
		distance  float64
		primitive int
		aggregate int
	}{
		{1, 0, 0},
		{1, 1, 0},
		{1, 0, 1},
		{2, 2, 0},
	}
	for j, e := range expected {
		require.Equal(t, e.distance, is[j].Distance, "interaction %d", j)
		require.Equal(t, e.primitive, is[j].PrimitiveIndex, "interaction %d", j)
		require.Equal(t, e.aggregate, is[j].AggregateIndex, "interaction %d", j)
	}
}

func TestInteraction_HitSet(t *testing.T) {
	seen := HitSet{}
	require.True(t, seen.Add(0, 1))
	require.False(t, seen.Add(0, 1))
	require.True(t, seen.Add(1, 1))
	require.True(t, seen.Add(0, 2))
}

func TestImproves(t *testing.T) {
	tests := []struct {
		name     string
		d        float64
		limit    float64
		found    bool
		improves bool
	}{
		{name: "First candidate on the bound", d: 1, limit: 1, found: false, improves: true},
		{name: "Later candidate on the bound", d: 1, limit: 1, found: true, improves: false},
		{name: "Later candidate inside", d: 0.5, limit: 1, found: true, improves: true},
		{name: "Outside", d: 2, limit: 1, found: false, improves: false},
		{name: "Unbounded", d: 1e300, limit: math.Inf(1), found: false, improves: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.improves, Improves(tt.d, tt.limit, tt.found))
		})
	}
}

func TestCommonKind(t *testing.T) {
	segment := NewSegment(r3.Vector{}, r3.Vector{X: 1})
	triangle := NewTriangle(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{Y: 1})

	require.Equal(t, KindSegment, CommonKind([]Primitive{segment, segment}))
	require.Equal(t, KindTriangle, CommonKind([]Primitive{triangle}))
	require.Equal(t, KindGeneric, CommonKind([]Primitive{segment, triangle}))
	require.Equal(t, KindGeneric, CommonKind(nil))
	require.Equal(t, KindGeneric, KindOf(nestedAggregate{Segment: segment}))

	require.Equal(t, 2, KindSegment.Points())
	require.Equal(t, 3, KindTriangle.Points())
	require.Equal(t, 1, KindGeneric.Points())
	require.Equal(t, "triangle", KindTriangle.String())
}
