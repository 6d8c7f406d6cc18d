package mbvh

import (
	"slices"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
)

// collapser turns a binary index into wide nodes and leaf records in one
// recursive pass
type collapser struct {
	primitives []geometry.Primitive
	binary     []bvh.Node
	references []int
	width      int
	maxDepth   int

	nodes  []Node
	leaves LeafPayload
	depth  int
}

func newCollapser(tree *bvh.Sbvh, width, maxDepth int) *collapser {
	return &collapser{
		primitives: tree.Primitives(),
		binary:     tree.Nodes(),
		references: tree.References(),
		width:      width,
		maxDepth:   maxDepth,
		leaves:     LeafPayload{Kind: geometry.CommonKind(tree.Primitives())},
	}
}

func (c *collapser) run() error {
	if len(c.binary) == 0 {
		return nil
	}
	_, err := c.collapse(0, 0)
	return err
}

// isLeafGroup reports whether the subtree at binary node is packed into
// leaf records instead of being expanded
func (c *collapser) isLeafGroup(node int) bool {
	n := c.binary[node]
	return n.IsLeaf() || n.ReferenceCount <= c.width
}

// collapse emits the wide node for the subtree at binary node and returns
// its index
func (c *collapser) collapse(node, depth int) (int, error) {
	if depth > c.maxDepth {
		return 0, errors.New("wide index exceeds the maximum depth").
			WithType(core.ErrTypeDepthOverflow).
			WithTag("depth", depth).
			WithTag("max_depth", c.maxDepth).
			WithTag("branching_factor", c.width)
	}
	c.depth = max(c.depth, depth)

	index := len(c.nodes)
	c.nodes = append(c.nodes, newNode(c.width))

	for w, child := range c.children(node) {
		box := c.binary[child].Box
		if c.isLeafGroup(child) {
			start, count := c.leafGroup(child)
			c.nodes[index].set(w, box, int32(-(start + 1)), int32(count))
			continue
		}

		wide, err := c.collapse(child, depth+1)
		if err != nil {
			return 0, err
		}
		c.nodes[index].set(w, box, int32(wide), 0)
	}

	return index, nil
}

// children selects up to width binary subtrees to hang under one wide node.
// Starting from the two children of node, the expandable subtree with the
// largest surface area is repeatedly replaced by its own children.
func (c *collapser) children(node int) []int {
	if c.isLeafGroup(node) {
		return []int{node}
	}

	n := c.binary[node]
	candidates := make([]int, 0, c.width)
	candidates = append(candidates, node+1, node+n.RightOffset)
	for len(candidates) < c.width {
		best := -1
		for k, candidate := range candidates {
			if c.isLeafGroup(candidate) {
				continue
			}
			if best < 0 || c.expandsBefore(candidate, candidates[best]) {
				best = k
			}
		}
		if best < 0 {
			break
		}

		parent := candidates[best]
		candidates[best] = parent + 1
		candidates = append(candidates, parent+c.binary[parent].RightOffset)
	}

	return candidates
}

// expandsBefore orders expansion candidates: larger surface area first, then
// more references, then lower node index
func (c *collapser) expandsBefore(a, b int) bool {
	na, nb := c.binary[a], c.binary[b]
	if sa, sb := na.Box.SurfaceArea(), nb.Box.SurfaceArea(); sa != sb {
		return sa > sb
	}
	if na.ReferenceCount != nb.ReferenceCount {
		return na.ReferenceCount > nb.ReferenceCount
	}
	return a < b
}

// leafGroup packs the primitives referenced under binary node. A primitive
// duplicated by spatial splits within the subtree is packed once.
func (c *collapser) leafGroup(node int) (start, count int) {
	n := c.binary[node]
	unique := make([]int, 0, n.ReferenceCount)
	for _, index := range c.references[n.Start : n.Start+n.ReferenceCount] {
		if !slices.Contains(unique, index) {
			unique = append(unique, index)
		}
	}
	return c.leaves.appendGroup(c.primitives, unique, c.width)
}
