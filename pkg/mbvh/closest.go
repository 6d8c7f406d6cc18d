package mbvh

import (
	"container/heap"
	"math"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// FindClosestPointFromNode finds the point closest to s.Center under wide
// node nodeStartIndex. Boxes are visited best first by squared distance and
// the search ends once the nearest pending box lies outside the sphere.
// boundaryHint orders boxes at equal distance.
func (m *Mbvh) FindClosestPointFromNode(s *core.BoundingSphere, i *geometry.Interaction, nodeStartIndex, aggregateIndex int,
	boundaryHint r3.Vector, nodesVisited *int) (bool, error) {
	if err := m.validateStartNode(nodeStartIndex); err != nil {
		return false, err
	}
	if err := s.Validate(); err != nil {
		return false, err
	}
	if len(m.nodes) == 0 {
		return false, nil
	}

	d2, _ := m.nodes[nodeStartIndex].Bounds().SquaredDistance(s.Center)
	if !s.Accepts(d2) {
		return false, nil
	}

	found := false
	distances := make([]float64, m.config.BranchingFactor)
	queue := &nodeQueue{{child: int32(nodeStartIndex), distance: d2}}
	for queue.Len() > 0 {
		entry := heap.Pop(queue).(queueEntry)
		if !s.Accepts(entry.distance) {
			break
		}
		*nodesVisited++

		if entry.child < 0 {
			start := int(-(entry.child + 1))
			for k := start; k < start+int(entry.count); k++ {
				if m.closestInRecord(k, s, i, aggregateIndex, found) {
					found = true
				}
			}
			continue
		}

		node := &m.nodes[entry.child]
		node.distanceLanes(s.Center, distances)
		for w, d := range distances {
			if !s.Accepts(d) {
				continue
			}
			heap.Push(queue, queueEntry{
				child:     node.Child[w],
				count:     node.LeafCount[w],
				distance:  d,
				alignment: s.HintAlignment(node.Box(w), boundaryHint),
			})
		}
	}

	if found && m.config.ComputeNormals {
		i.ComputeNormal()
	}
	return found, nil
}

// closestInRecord searches every lane of leaf record k and keeps the closest
// point in best. Reports whether best changed.
func (m *Mbvh) closestInRecord(k int, s *core.BoundingSphere, best *geometry.Interaction, aggregateIndex int, found bool) bool {
	rec := &m.leaves.Records[k]
	improved := false
	for lane, index := range rec.PrimitiveIndex {
		if index < 0 {
			continue
		}
		p := int(index)
		primitive := m.primitives[p]

		var point r3.Vector
		var uv r2.Point
		switch m.leaves.Kind {
		case geometry.KindSegment:
			var u float64
			point, u = geometry.ClosestPointOnSegment(rec.Point(0, lane), rec.Point(1, lane), s.Center)
			uv = r2.Point{X: u}
		case geometry.KindTriangle:
			point, uv = geometry.ClosestPointOnTriangle(rec.Point(0, lane), rec.Point(1, lane), rec.Point(2, lane), s.Center)
		default:
			if geometry.RecordClosest(primitive, p, aggregateIndex, s, best, found || improved) {
				improved = true
			}
			continue
		}

		d2 := point.Sub(s.Center).Norm2()
		if !geometry.Improves(d2, s.R2, found || improved) {
			continue
		}
		candidate := geometry.NewInteraction()
		candidate.Distance = math.Sqrt(d2)
		candidate.Point = point
		candidate.UV = uv
		candidate.Stamp(primitive, p, aggregateIndex)
		*best = candidate
		s.R2 = d2
		improved = true
	}
	return improved
}
