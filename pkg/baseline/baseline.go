// Package baseline implements an aggregate that answers every query by
// scanning all of its primitives. It is the reference the tree aggregates
// are checked against.
package baseline

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
)

// Config controls how the baseline reports results
type Config struct {
	Index          int  // Aggregate index stamped on interactions when nested
	ComputeNormals bool // Fill Interaction.Normal for returned interactions
}

// Baseline is a brute-force aggregate
type Baseline struct {
	ID         string
	primitives []geometry.Primitive
	bbox       core.AABB
	config     Config
}

// New creates a baseline aggregate over primitives. The slice is borrowed,
// not copied.
func New(primitives []geometry.Primitive, config Config) (*Baseline, error) {
	bbox := core.EmptyAABB()
	for i, p := range primitives {
		if p == nil {
			return nil, errors.New("nil primitive").
				WithType(core.ErrTypeInvalidPrimitive).
				WithTag("index", i)
		}
		bbox = bbox.Union(p.BoundingBox())
	}

	b := &Baseline{
		ID:         uuid.NewString(),
		primitives: primitives,
		bbox:       bbox,
		config:     config,
	}

	logs.WithTag("aggregate_id", b.ID).
		WithTag("primitives", len(primitives)).
		Debug("baseline aggregate created")
	return b, nil
}

// Primitives returns the scanned primitives
func (b *Baseline) Primitives() []geometry.Primitive {
	return b.primitives
}

// BoundingBox returns the union of the primitive boxes
func (b *Baseline) BoundingBox() core.AABB {
	return b.bbox
}

// Centroid returns the mean of the primitive centroids
func (b *Baseline) Centroid() r3.Vector {
	var c r3.Vector
	if len(b.primitives) == 0 {
		return c
	}
	for _, p := range b.primitives {
		c = c.Add(p.Centroid())
	}
	return c.Mul(1 / float64(len(b.primitives)))
}

// SurfaceArea returns the summed primitive surface area
func (b *Baseline) SurfaceArea() float64 {
	area := 0.0
	for _, p := range b.primitives {
		area += p.SurfaceArea()
	}
	return area
}

// SignedVolume returns the summed primitive signed volume
func (b *Baseline) SignedVolume() float64 {
	volume := 0.0
	for _, p := range b.primitives {
		volume += p.SignedVolume()
	}
	return volume
}

// Normal is undefined for an aggregate; interactions carry the normal of
// the primitive they hit.
func (b *Baseline) Normal(uv r2.Point) r3.Vector {
	return r3.Vector{}
}

// Intersect runs a ray query from the root
func (b *Baseline) Intersect(r core.Ray, checkOcclusion, countHits bool) []geometry.Interaction {
	return geometry.IntersectAggregate(b, b.config.Index, r, countHits)
}

// FindClosestPoint runs a closest point query from the root
func (b *Baseline) FindClosestPoint(s core.BoundingSphere) (geometry.Interaction, bool) {
	return geometry.ClosestPointAggregate(b, b.config.Index, s)
}

// IntersectFromNode tests r against every primitive. Every primitive counts
// as one visited node.
func (b *Baseline) IntersectFromNode(r *core.Ray, is *[]geometry.Interaction, nodeStartIndex, aggregateIndex int,
	nodesVisited *int, checkOcclusion, countHits bool) (int, error) {
	if err := b.validateStartNode(nodeStartIndex); err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	if !checkOcclusion {
		*is = (*is)[:0]
	}
	for p, primitive := range b.primitives {
		*nodesVisited++
		hits := primitive.Intersect(*r, checkOcclusion, countHits)
		if len(hits) == 0 {
			continue
		}
		if checkOcclusion {
			return 1, nil
		}
		geometry.RecordHits(hits, primitive, p, aggregateIndex, r, is, countHits)
	}

	if checkOcclusion {
		return 0, nil
	}
	return geometry.FinishHits(is, countHits, b.config.ComputeNormals), nil
}

// FindClosestPointFromNode returns the point of any primitive closest to
// s.Center within the sphere
func (b *Baseline) FindClosestPointFromNode(s *core.BoundingSphere, i *geometry.Interaction, nodeStartIndex, aggregateIndex int,
	boundaryHint r3.Vector, nodesVisited *int) (bool, error) {
	if err := b.validateStartNode(nodeStartIndex); err != nil {
		return false, err
	}
	if err := s.Validate(); err != nil {
		return false, err
	}

	found := false
	for p, primitive := range b.primitives {
		*nodesVisited++
		if geometry.RecordClosest(primitive, p, aggregateIndex, s, i, found) {
			found = true
		}
	}

	if found && b.config.ComputeNormals {
		i.ComputeNormal()
	}
	return found, nil
}

func (b *Baseline) validateStartNode(nodeStartIndex int) error {
	if nodeStartIndex != 0 {
		return errors.New("baseline only has a root node").
			WithType(core.ErrTypeInvalidStartNode).
			WithTag("node", nodeStartIndex)
	}
	return nil
}
