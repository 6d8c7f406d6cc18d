package bvh

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
)

// traversalEntry is a pending node and the distance at which the query
// reaches its box: the ray entry distance or the squared box distance.
type traversalEntry struct {
	node     int
	distance float64
}

func (t *Sbvh) validateStartNode(nodeStartIndex int) error {
	if nodeStartIndex == 0 && len(t.nodes) == 0 {
		return nil
	}
	if nodeStartIndex < 0 || nodeStartIndex >= len(t.nodes) {
		return errors.New("start node out of range").
			WithType(core.ErrTypeInvalidStartNode).
			WithTag("node", nodeStartIndex).
			WithTag("nodes", len(t.nodes))
	}
	return nil
}

// IntersectFromNode intersects r with the primitives under nodeStartIndex.
// Children are pushed far first so the nearer one is visited next.
func (t *Sbvh) IntersectFromNode(r *core.Ray, is *[]geometry.Interaction, nodeStartIndex, aggregateIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) (int, error) {
	if err := t.validateStartNode(nodeStartIndex); err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if !checkOcclusion {
		*is = (*is)[:0]
	}
	if len(t.nodes) == 0 {
		return 0, nil
	}

	tNear, _, hit := t.nodes[nodeStartIndex].Box.Hit(*r)
	if !hit {
		return 0, nil
	}

	var seen geometry.HitSet
	if countHits {
		seen = geometry.HitSet{}
	}

	stack := make([]traversalEntry, 0, 64)
	stack = append(stack, traversalEntry{node: nodeStartIndex, distance: tNear})
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if entry.distance > r.TMax {
			continue
		}

		node := &t.nodes[entry.node]
		*nodesVisited++

		if node.IsLeaf() {
			for _, p := range t.references[node.Start : node.Start+node.ReferenceCount] {
				if countHits && !seen.Add(aggregateIndex, p) {
					continue
				}
				primitive := t.primitives[p]
				hits := primitive.Intersect(*r, checkOcclusion, countHits)
				if len(hits) == 0 {
					continue
				}
				if checkOcclusion {
					return 1, nil
				}
				geometry.RecordHits(hits, primitive, p, aggregateIndex, r, is, countHits)
			}
			continue
		}

		left, right := entry.node+1, entry.node+node.RightOffset
		tLeft, _, hitLeft := t.nodes[left].Box.Hit(*r)
		tRight, _, hitRight := t.nodes[right].Box.Hit(*r)
		switch {
		case hitLeft && hitRight:
			near, far := traversalEntry{left, tLeft}, traversalEntry{right, tRight}
			if tRight < tLeft {
				near, far = far, near
			}
			stack = append(stack, far, near)
		case hitLeft:
			stack = append(stack, traversalEntry{left, tLeft})
		case hitRight:
			stack = append(stack, traversalEntry{right, tRight})
		}
	}

	if checkOcclusion {
		return 0, nil
	}
	return geometry.FinishHits(is, countHits, t.config.ComputeNormals), nil
}

// FindClosestPointFromNode finds the point closest to s.Center under
// nodeStartIndex. Children are visited nearest box first; boundaryHint
// orders children at equal distance.
func (t *Sbvh) FindClosestPointFromNode(s *core.BoundingSphere, i *geometry.Interaction, nodeStartIndex, aggregateIndex int,
	boundaryHint r3.Vector, nodesVisited *int) (bool, error) {
	if err := t.validateStartNode(nodeStartIndex); err != nil {
		return false, err
	}
	if err := s.Validate(); err != nil {
		return false, err
	}
	if len(t.nodes) == 0 {
		return false, nil
	}

	d2, _ := t.nodes[nodeStartIndex].Box.SquaredDistance(s.Center)
	if !s.Accepts(d2) {
		return false, nil
	}

	found := false
	stack := make([]traversalEntry, 0, 64)
	stack = append(stack, traversalEntry{node: nodeStartIndex, distance: d2})
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !s.Accepts(entry.distance) {
			continue
		}

		node := &t.nodes[entry.node]
		*nodesVisited++

		if node.IsLeaf() {
			for _, p := range t.references[node.Start : node.Start+node.ReferenceCount] {
				if geometry.RecordClosest(t.primitives[p], p, aggregateIndex, s, i, found) {
					found = true
				}
			}
			continue
		}

		left, right := entry.node+1, entry.node+node.RightOffset
		dLeft, _ := t.nodes[left].Box.SquaredDistance(s.Center)
		dRight, _ := t.nodes[right].Box.SquaredDistance(s.Center)
		acceptLeft, acceptRight := s.Accepts(dLeft), s.Accepts(dRight)
		switch {
		case acceptLeft && acceptRight:
			near, far := traversalEntry{left, dLeft}, traversalEntry{right, dRight}
			if dRight < dLeft || (dRight == dLeft &&
				s.HintAlignment(t.nodes[right].Box, boundaryHint) > s.HintAlignment(t.nodes[left].Box, boundaryHint)) {
				near, far = far, near
			}
			stack = append(stack, far, near)
		case acceptLeft:
			stack = append(stack, traversalEntry{left, dLeft})
		case acceptRight:
			stack = append(stack, traversalEntry{right, dRight})
		}
	}

	if found && t.config.ComputeNormals {
		i.ComputeNormal()
	}
	return found, nil
}
