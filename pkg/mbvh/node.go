package mbvh

import (
	"math"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r3"
)

// EmptyChild tags a wide node slot that holds nothing
const EmptyChild = math.MaxInt32

// Node is a wide node holding up to B children, stored lane by lane so that
// one pass over an axis tests every child box. Child[w] >= 0 is the index of
// an internal wide node. Child[w] < 0 is a leaf group starting at leaf record
// -(Child[w]+1) and spanning LeafCount[w] records.
type Node struct {
	BoxMin    [core.Dim][]float64
	BoxMax    [core.Dim][]float64
	Child     []int32
	LeafCount []int32
}

func newNode(width int) Node {
	n := Node{
		Child:     make([]int32, width),
		LeafCount: make([]int32, width),
	}
	for axis := 0; axis < core.Dim; axis++ {
		n.BoxMin[axis] = make([]float64, width)
		n.BoxMax[axis] = make([]float64, width)
	}
	for w := 0; w < width; w++ {
		n.clear(w)
	}
	return n
}

// clear marks slot w unused with an inverted box
func (n *Node) clear(w int) {
	for axis := 0; axis < core.Dim; axis++ {
		n.BoxMin[axis][w] = math.Inf(1)
		n.BoxMax[axis][w] = math.Inf(-1)
	}
	n.Child[w] = EmptyChild
	n.LeafCount[w] = 0
}

func (n *Node) set(w int, box core.AABB, child, leafCount int32) {
	for axis := 0; axis < core.Dim; axis++ {
		n.BoxMin[axis][w] = core.Axis(box.Min, axis)
		n.BoxMax[axis][w] = core.Axis(box.Max, axis)
	}
	n.Child[w] = child
	n.LeafCount[w] = leafCount
}

// Width returns the number of slots
func (n *Node) Width() int {
	return len(n.Child)
}

// IsEmpty reports whether slot w is unused
func (n *Node) IsEmpty(w int) bool {
	return n.Child[w] == EmptyChild
}

// IsLeafGroup reports whether slot w holds a leaf group
func (n *Node) IsLeafGroup(w int) bool {
	return n.Child[w] < 0
}

// LeafStart returns the first leaf record of the group in slot w
func (n *Node) LeafStart(w int) int {
	return int(-(n.Child[w] + 1))
}

// Box returns the box of slot w
func (n *Node) Box(w int) core.AABB {
	var lo, hi r3.Vector
	for axis := 0; axis < core.Dim; axis++ {
		lo = core.WithAxis(lo, axis, n.BoxMin[axis][w])
		hi = core.WithAxis(hi, axis, n.BoxMax[axis][w])
	}
	return core.NewAABB(lo, hi)
}

// Bounds returns the union of the slot boxes
func (n *Node) Bounds() core.AABB {
	box := core.EmptyAABB()
	for w := range n.Child {
		if !n.IsEmpty(w) {
			box = box.Union(n.Box(w))
		}
	}
	return box
}

// intersectLanes runs the slab test of r against every slot box. tNear gets
// the entry distance of each hit lane. Inverted boxes never hit.
func (n *Node) intersectLanes(r *core.Ray, tNear, tFar []float64, hit []bool) {
	for w := range hit {
		tNear[w], tFar[w], hit[w] = 0, r.TMax, true
	}

	for axis := 0; axis < core.Dim; axis++ {
		origin := core.Axis(r.Origin, axis)
		direction := core.Axis(r.Direction, axis)
		invDirection := core.Axis(r.InvDirection, axis)
		lo, hi := n.BoxMin[axis], n.BoxMax[axis]

		for w := range hit {
			if !hit[w] {
				continue
			}
			if direction == 0 {
				if origin < lo[w] || origin > hi[w] {
					hit[w] = false
				}
				continue
			}
			t1 := (lo[w] - origin) * invDirection
			t2 := (hi[w] - origin) * invDirection
			if direction < 0 {
				t1, t2 = t2, t1
			}
			tNear[w] = math.Max(tNear[w], t1)
			tFar[w] = math.Min(tFar[w], t2)
			if tNear[w] > tFar[w] {
				hit[w] = false
			}
		}
	}
}

// distanceLanes writes the squared distance from p to every slot box.
// Inverted boxes are infinitely far away.
func (n *Node) distanceLanes(p r3.Vector, d2 []float64) {
	for w := range d2 {
		d2[w] = 0
	}

	for axis := 0; axis < core.Dim; axis++ {
		c := core.Axis(p, axis)
		lo, hi := n.BoxMin[axis], n.BoxMax[axis]
		for w := range d2 {
			d := math.Max(math.Max(lo[w]-c, c-hi[w]), 0)
			d2[w] += d * d
		}
	}
}
