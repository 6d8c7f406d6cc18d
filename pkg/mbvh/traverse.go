package mbvh

import (
	"cmp"
	"slices"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r2"
)

// stackEntry is a pending wide node or leaf group and the ray distance at
// which its box is entered
type stackEntry struct {
	child    int32
	count    int32
	distance float64
}

// laneScratch holds the per query lane buffers of one wide node test
type laneScratch struct {
	tNear, tFar []float64
	hit         []bool
	order       []stackEntry
}

func newLaneScratch(width int) *laneScratch {
	return &laneScratch{
		tNear: make([]float64, width),
		tFar:  make([]float64, width),
		hit:   make([]bool, width),
		order: make([]stackEntry, 0, width),
	}
}

// IntersectFromNode intersects r with the primitives under wide node
// nodeStartIndex. Hit children are pushed farthest first so the nearest one
// is visited next.
func (m *Mbvh) IntersectFromNode(r *core.Ray, is *[]geometry.Interaction, nodeStartIndex, aggregateIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) (int, error) {
	if err := m.validateStartNode(nodeStartIndex); err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if !checkOcclusion {
		*is = (*is)[:0]
	}
	if len(m.nodes) == 0 {
		return 0, nil
	}

	var seen geometry.HitSet
	if countHits {
		seen = geometry.HitSet{}
	}

	scratch := newLaneScratch(m.config.BranchingFactor)
	stack := make([]stackEntry, 0, 64)
	stack = append(stack, stackEntry{child: int32(nodeStartIndex)})
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if entry.distance > r.TMax {
			continue
		}
		*nodesVisited++

		if entry.child < 0 {
			start := int(-(entry.child + 1))
			for k := start; k < start+int(entry.count); k++ {
				if m.intersectRecord(k, r, is, aggregateIndex, seen, checkOcclusion, countHits) {
					return 1, nil
				}
			}
			continue
		}

		stack = m.pushHitChildren(&m.nodes[entry.child], r, scratch, stack)
	}

	if checkOcclusion {
		return 0, nil
	}
	return geometry.FinishHits(is, countHits, m.config.ComputeNormals), nil
}

// pushHitChildren appends the slots of node that r enters, farthest first
func (m *Mbvh) pushHitChildren(node *Node, r *core.Ray, scratch *laneScratch, stack []stackEntry) []stackEntry {
	node.intersectLanes(r, scratch.tNear, scratch.tFar, scratch.hit)

	scratch.order = scratch.order[:0]
	for w, hit := range scratch.hit {
		if hit {
			scratch.order = append(scratch.order, stackEntry{
				child:    node.Child[w],
				count:    node.LeafCount[w],
				distance: scratch.tNear[w],
			})
		}
	}
	slices.SortStableFunc(scratch.order, func(a, b stackEntry) int {
		return cmp.Compare(b.distance, a.distance)
	})
	return append(stack, scratch.order...)
}

// intersectRecord tests r against every lane of leaf record k. Reports
// whether an occlusion query found a hit.
func (m *Mbvh) intersectRecord(k int, r *core.Ray, is *[]geometry.Interaction, aggregateIndex int,
	seen geometry.HitSet, checkOcclusion, countHits bool) bool {
	rec := &m.leaves.Records[k]
	for lane, index := range rec.PrimitiveIndex {
		if index < 0 {
			continue
		}
		p := int(index)
		if countHits && !seen.Add(aggregateIndex, p) {
			continue
		}

		primitive := m.primitives[p]
		var hits []geometry.Interaction
		switch m.leaves.Kind {
		case geometry.KindSegment:
			t, u, hit := geometry.IntersectSegment(rec.Point(0, lane), rec.Point(1, lane), *r)
			if hit {
				hits = []geometry.Interaction{laneHit(r, t, r2.Point{X: u})}
			}
		case geometry.KindTriangle:
			t, uv, hit := geometry.IntersectTriangle(rec.Point(0, lane), rec.Point(1, lane), rec.Point(2, lane), *r)
			if hit {
				hits = []geometry.Interaction{laneHit(r, t, uv)}
			}
		default:
			hits = primitive.Intersect(*r, checkOcclusion, countHits)
		}

		if len(hits) == 0 {
			continue
		}
		if checkOcclusion {
			return true
		}
		geometry.RecordHits(hits, primitive, p, aggregateIndex, r, is, countHits)
	}
	return false
}

func laneHit(r *core.Ray, t float64, uv r2.Point) geometry.Interaction {
	i := geometry.NewInteraction()
	i.Distance = t
	i.Point = r.At(t)
	i.UV = uv
	return i
}
