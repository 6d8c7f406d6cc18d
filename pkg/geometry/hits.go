package geometry

import (
	"math"

	"github.com/df07/go-geomquery/pkg/core"
)

// RecordHits merges the hits of primitive p into is. In closest hit mode only
// a hit closer than r.TMax replaces the current one and r.TMax shrinks to it;
// with countHits every hit is appended. Reports whether any hit was kept.
func RecordHits(hits []Interaction, p Primitive, primitiveIndex, aggregateIndex int,
	r *core.Ray, is *[]Interaction, countHits bool) bool {
	kept := false
	for _, hit := range hits {
		hit.Stamp(p, primitiveIndex, aggregateIndex)
		if countHits {
			*is = append(*is, hit)
			kept = true
			continue
		}
		if Improves(hit.Distance, r.TMax, len(*is) > 0) {
			r.TMax = hit.Distance
			*is = append((*is)[:0], hit)
			kept = true
		}
	}
	return kept
}

// FinishHits orders collected hits, drops repeated primitives and fills in
// normals on request. Returns the number of hits.
func FinishHits(is *[]Interaction, countHits, computeNormals bool) int {
	if countHits {
		SortInteractions(*is)
		*is = RemoveDuplicates(*is)
	}
	if computeNormals {
		for j := range *is {
			(*is)[j].ComputeNormal()
		}
	}
	return len(*is)
}

// RecordClosest tests primitive p against the search sphere and keeps its
// closest point in best when it improves on the current one, shrinking s.R2.
func RecordClosest(p Primitive, primitiveIndex, aggregateIndex int,
	s *core.BoundingSphere, best *Interaction, found bool) bool {
	candidate, ok := p.FindClosestPoint(*s)
	if !ok {
		return false
	}
	d2 := candidate.Distance * candidate.Distance
	if found && d2 >= s.R2 {
		return false
	}
	candidate.Stamp(p, primitiveIndex, aggregateIndex)
	*best = candidate
	s.R2 = math.Min(s.R2, d2)
	return true
}

// IntersectAggregate answers a primitive-level ray query against a nested
// aggregate. Occlusion queries run in closest hit mode so that the caller
// gets an interaction to inspect.
func IntersectAggregate(a Aggregate, index int, r core.Ray, countHits bool) []Interaction {
	var is []Interaction
	nodesVisited := 0
	if n, err := a.IntersectFromNode(&r, &is, 0, index, &nodesVisited, false, countHits); err != nil || n == 0 {
		return nil
	}
	return is
}

// ClosestPointAggregate answers a primitive-level closest point query against
// a nested aggregate
func ClosestPointAggregate(a Aggregate, index int, s core.BoundingSphere) (Interaction, bool) {
	i := NewInteraction()
	nodesVisited := 0
	found, err := a.FindClosestPointFromNode(&s, &i, 0, index, s.Center, &nodesVisited)
	if err != nil || !found {
		return Interaction{}, false
	}
	return i, true
}
