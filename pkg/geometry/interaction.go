package geometry

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Interaction is the result record of ray and closest point queries
type Interaction struct {
	Distance       float64   // Distance along the ray, or to the query center
	Point          r3.Vector // Point on the primitive
	UV             r2.Point  // Primitive parametrization of Point
	Normal         r3.Vector // Only set when the aggregate computes normals
	Primitive      Primitive // The leaf primitive that was hit
	PrimitiveIndex int       // Index of the primitive in its aggregate, -1 if unset
	AggregateIndex int       // Index of the aggregate that owns the primitive, -1 if unset
}

// NewInteraction returns an interaction with no primitive and an infinite
// distance
func NewInteraction() Interaction {
	return Interaction{Distance: math.Inf(1), PrimitiveIndex: -1, AggregateIndex: -1}
}

// ComputeNormal sets the normal from the primitive at the interaction uv
func (i *Interaction) ComputeNormal() {
	if i.Primitive != nil {
		i.Normal = i.Primitive.Normal(i.UV)
	}
}

// Stamp records which aggregate slot produced the interaction. Interactions
// coming out of a nested aggregate already carry the inner stamp and are left
// alone.
func (i *Interaction) Stamp(p Primitive, primitiveIndex, aggregateIndex int) {
	if _, nested := p.(Aggregate); nested {
		return
	}
	i.Primitive = p
	i.PrimitiveIndex = primitiveIndex
	i.AggregateIndex = aggregateIndex
}

type interactionKey struct {
	aggregate, primitive int
}

func (i Interaction) key() interactionKey {
	return interactionKey{aggregate: i.AggregateIndex, primitive: i.PrimitiveIndex}
}

// SortInteractions orders interactions by increasing distance. Equal
// distances keep primitive order so repeated queries are bit-identical.
func SortInteractions(is []Interaction) {
	sort.SliceStable(is, func(a, b int) bool {
		if is[a].Distance != is[b].Distance {
			return is[a].Distance < is[b].Distance
		}
		if is[a].AggregateIndex != is[b].AggregateIndex {
			return is[a].AggregateIndex < is[b].AggregateIndex
		}
		return is[a].PrimitiveIndex < is[b].PrimitiveIndex
	})
}

// RemoveDuplicates keeps the first interaction of every primitive. Sort
// first to keep the closest one.
func RemoveDuplicates(is []Interaction) []Interaction {
	seen := make(map[interactionKey]struct{}, len(is))
	out := is[:0]
	for _, i := range is {
		k := i.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, i)
	}
	return out
}

// HitSet remembers which primitives a collect-all query already evaluated.
// Spatial splits reference one primitive from several leaves.
type HitSet map[interactionKey]struct{}

// Add records the primitive and reports whether it was new
func (h HitSet) Add(aggregateIndex, primitiveIndex int) bool {
	k := interactionKey{aggregate: aggregateIndex, primitive: primitiveIndex}
	if _, ok := h[k]; ok {
		return false
	}
	h[k] = struct{}{}
	return true
}

// Improves reports whether a candidate at distance d should replace the
// current best whose bound is limit. The first candidate may lie on the
// bound; later ones must be strictly closer.
func Improves(d, limit float64, found bool) bool {
	if found {
		return d < limit
	}
	return d <= limit
}
