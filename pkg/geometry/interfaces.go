package geometry

import (
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Primitive is the capability every shape indexed by an aggregate provides.
// Implementations must be safe for concurrent reads.
type Primitive interface {
	BoundingBox() core.AABB
	Centroid() r3.Vector
	SurfaceArea() float64
	SignedVolume() float64

	// Intersect returns the hits of r with the primitive that lie within
	// [0, r.TMax]: at most one unless countHits is set. The ray is not
	// modified; callers shrink TMax themselves.
	Intersect(r core.Ray, checkOcclusion, countHits bool) []Interaction

	// FindClosestPoint returns the point of the primitive closest to the
	// sphere center, if it lies within the sphere.
	FindClosestPoint(s core.BoundingSphere) (Interaction, bool)

	// Normal returns the unit surface normal at the given uv coordinates
	Normal(uv r2.Point) r3.Vector
}

// Splitter is implemented by primitives that can clip themselves against an
// axis-aligned plane. Builders fall back to clipping the bounding box when a
// primitive does not implement it.
type Splitter interface {
	Split(dim int, coord float64) (left, right core.AABB)
}

// Aggregate is a primitive that indexes other primitives. Aggregates can be
// nested inside other aggregates as generic primitives.
type Aggregate interface {
	Primitive

	// IntersectFromNode intersects r with the primitives in the subtree rooted
	// at nodeStartIndex and writes the hits to is. In closest hit mode r.TMax
	// shrinks to the closest hit. With checkOcclusion the first hit ends the
	// query and is is left untouched. With countHits all hits are returned
	// sorted by distance, at most one per primitive.
	IntersectFromNode(r *core.Ray, is *[]Interaction, nodeStartIndex, aggregateIndex int,
		nodesVisited *int, checkOcclusion, countHits bool) (int, error)

	// FindClosestPointFromNode finds the point closest to s.Center within the
	// subtree rooted at nodeStartIndex, shrinking s.R2 as candidates are found.
	// boundaryHint only orders the search.
	FindClosestPointFromNode(s *core.BoundingSphere, i *Interaction, nodeStartIndex, aggregateIndex int,
		boundaryHint r3.Vector, nodesVisited *int) (bool, error)
}

// Kind identifies the primitive layouts the wide tree packs into lanes
type Kind int

const (
	KindGeneric Kind = iota
	KindSegment
	KindTriangle
)

// KindOf returns the layout kind of p
func KindOf(p Primitive) Kind {
	switch p.(type) {
	case *Segment:
		return KindSegment
	case *Triangle:
		return KindTriangle
	default:
		return KindGeneric
	}
}

// CommonKind returns the kind shared by all primitives, or KindGeneric when
// the set is mixed or empty.
func CommonKind(primitives []Primitive) Kind {
	if len(primitives) == 0 {
		return KindGeneric
	}
	kind := KindOf(primitives[0])
	for _, p := range primitives[1:] {
		if KindOf(p) != kind {
			return KindGeneric
		}
	}
	return kind
}

// Points returns the number of vertices stored per primitive of this kind
func (k Kind) Points() int {
	switch k {
	case KindSegment:
		return 2
	case KindTriangle:
		return 3
	default:
		return 1
	}
}

func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindTriangle:
		return "triangle"
	default:
		return "generic"
	}
}
