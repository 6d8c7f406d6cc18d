package mbvh

import (
	"testing"

	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/stretchr/testify/require"
)

func TestChildren_ExpandsLargestSurfaceAreaFirst(t *testing.T) {
	config := bvh.DefaultConfig()
	config.LeafSize = 1
	tree, err := bvh.New(clusters(), config)
	require.NoError(t, err)

	nodes := tree.Nodes()
	large, small := 1, nodes[0].RightOffset
	require.Equal(t, 6, nodes[large].ReferenceCount)
	require.Equal(t, 6, nodes[small].ReferenceCount)
	require.Greater(t, nodes[large].Box.SurfaceArea(), nodes[small].Box.SurfaceArea())

	// Three slots leave room for one expansion, which goes to the larger
	// cluster
	c := newCollapser(tree, 3, 100)
	require.Equal(t, []int{large + 1, small, large + nodes[large].RightOffset}, c.children(0))

	c = newCollapser(tree, 2, 100)
	require.Equal(t, []int{large, small}, c.children(0))
}

func TestChildren_LeafGroupRoot(t *testing.T) {
	tree, err := bvh.New(clusters()[:3], bvh.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, tree.Nodes(), 1)

	c := newCollapser(tree, 4, 100)
	require.Equal(t, []int{0}, c.children(0))
	require.NoError(t, c.run())
	require.Len(t, c.nodes, 1)
	require.Len(t, c.leaves.Records, 1)
	require.Equal(t, []int32{0, 1, 2, -1}, c.leaves.Records[0].PrimitiveIndex)
}

func TestLeafGroup_PacksUniquePrimitives(t *testing.T) {
	config := bvh.DefaultConfig()
	config.LeafSize = 1
	tree, err := bvh.New(clusters(), config)
	require.NoError(t, err)

	c := newCollapser(tree, 2, 100)
	start, count := c.leafGroup(0)
	require.Equal(t, 0, start)
	require.Equal(t, 6, count)

	packed := map[int32]bool{}
	for _, rec := range c.leaves.Records {
		for _, index := range rec.PrimitiveIndex {
			require.False(t, packed[index], "primitive %d packed twice", index)
			packed[index] = true
		}
	}
	require.Len(t, packed, 12)

	tri := tree.Primitives()[c.leaves.Records[0].PrimitiveIndex[1]].BoundingBox()
	require.Equal(t, tri.Min, c.leaves.Records[0].Point(0, 1))
}
