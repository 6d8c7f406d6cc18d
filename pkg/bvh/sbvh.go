// Package bvh builds a binary bounding volume hierarchy with object and
// spatial splits over a borrowed slice of primitives.
package bvh

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
)

// Node is an entry of the flat binary tree. The left child of an internal
// node is the next node and the right child is RightOffset nodes away. A
// leaf has no right offset. Start and ReferenceCount cover the references
// of the whole subtree.
type Node struct {
	Box            core.AABB
	Start          int
	ReferenceCount int
	RightOffset    int
}

// IsLeaf reports whether the node has no children
func (n Node) IsLeaf() bool {
	return n.RightOffset == 0
}

// Sbvh is a binary spatial index. It is immutable after New and safe for
// concurrent queries.
type Sbvh struct {
	ID         string
	primitives []geometry.Primitive
	nodes      []Node
	references []int
	config     Config
	stats      Stats
}

// New builds the index over primitives. The slice is borrowed and must not
// change while the index is in use.
func New(primitives []geometry.Primitive, config Config) (*Sbvh, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	for i, p := range primitives {
		if p == nil {
			return nil, errors.New("nil primitive").
				WithType(core.ErrTypeInvalidPrimitive).
				WithTag("index", i)
		}
		if box := p.BoundingBox(); core.HasNaN(box.Min) || core.HasNaN(box.Max) {
			return nil, errors.New("primitive bounding box is not a number").
				WithType(core.ErrTypeInvalidPrimitive).
				WithTag("index", i)
		}
	}

	start := time.Now()
	b := newBuilder(primitives, config)
	b.build()

	t := &Sbvh{
		ID:         uuid.NewString(),
		primitives: primitives,
		nodes:      b.nodes,
		references: make([]int, len(b.references)),
		config:     config,
	}
	for i, ref := range b.references {
		t.references[i] = ref.index
	}

	t.stats = t.getStats()
	t.stats.BuildTime = time.Since(start)
	instrumentBuild(config.CostHeuristic, start, t.stats)

	logger := logs.WithTag("aggregate_id", t.ID).
		WithTag("heuristic", config.CostHeuristic.String()).
		WithTag("primitives", t.stats.Primitives).
		WithTag("references", t.stats.References).
		WithTag("nodes", t.stats.Nodes).
		WithTag("leafs", t.stats.Leafs).
		WithTag("max_depth", t.stats.MaxDepth).
		WithTag("build_time", t.stats.BuildTime.String())
	if config.PrintStats {
		logger.Info("binary index built")
	} else {
		logger.Debug("binary index built")
	}

	return t, nil
}

// Nodes returns the flat tree. Callers must not modify it.
func (t *Sbvh) Nodes() []Node {
	return t.nodes
}

// References returns the primitive index of every reference. Leaf ranges
// index into it.
func (t *Sbvh) References() []int {
	return t.references
}

// Primitives returns the indexed primitives
func (t *Sbvh) Primitives() []geometry.Primitive {
	return t.primitives
}

// Config returns the build parameters
func (t *Sbvh) Config() Config {
	return t.config
}

// Stats returns the build statistics
func (t *Sbvh) Stats() Stats {
	return t.stats
}

// BoundingBox returns the root box, or the empty box for an empty tree
func (t *Sbvh) BoundingBox() core.AABB {
	if len(t.nodes) == 0 {
		return core.EmptyAABB()
	}
	return t.nodes[0].Box
}

// Centroid returns the mean of the primitive centroids
func (t *Sbvh) Centroid() r3.Vector {
	var c r3.Vector
	if len(t.primitives) == 0 {
		return c
	}
	for _, p := range t.primitives {
		c = c.Add(p.Centroid())
	}
	return c.Mul(1 / float64(len(t.primitives)))
}

// SurfaceArea returns the summed primitive surface area
func (t *Sbvh) SurfaceArea() float64 {
	area := 0.0
	for _, p := range t.primitives {
		area += p.SurfaceArea()
	}
	return area
}

// SignedVolume returns the summed primitive signed volume
func (t *Sbvh) SignedVolume() float64 {
	volume := 0.0
	for _, p := range t.primitives {
		volume += p.SignedVolume()
	}
	return volume
}

// Normal is undefined for an aggregate
func (t *Sbvh) Normal(uv r2.Point) r3.Vector {
	return r3.Vector{}
}

// Intersect runs a ray query from the root
func (t *Sbvh) Intersect(r core.Ray, checkOcclusion, countHits bool) []geometry.Interaction {
	return geometry.IntersectAggregate(t, t.config.Index, r, countHits)
}

// FindClosestPoint runs a closest point query from the root
func (t *Sbvh) FindClosestPoint(s core.BoundingSphere) (geometry.Interaction, bool) {
	return geometry.ClosestPointAggregate(t, t.config.Index, s)
}
