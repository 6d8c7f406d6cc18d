// Package mbvh collapses a binary index into a wide tree whose nodes test B
// child boxes at once and whose leaves pack primitive vertices lane by lane.
package mbvh

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
)

// Mbvh is a wide spatial index. It is immutable after New and safe for
// concurrent queries.
type Mbvh struct {
	ID           string
	primitives   []geometry.Primitive
	nodes        []Node
	leaves       LeafPayload
	bbox         core.AABB
	centroid     r3.Vector
	surfaceArea  float64
	signedVolume float64
	config       Config
	stats        Stats
}

// New collapses tree into a wide index. The tree's primitives are borrowed;
// the tree itself is not needed afterwards.
func New(tree *bvh.Sbvh, config Config) (*Mbvh, error) {
	if err := config.validate(); err != nil {
		instrumentFailure(err)
		return nil, err
	}
	if tree == nil {
		err := errors.New("missing binary index").WithType(core.ErrTypeInvalidConfig)
		instrumentFailure(err)
		return nil, err
	}

	start := time.Now()
	c := newCollapser(tree, config.BranchingFactor, config.MaxDepth())
	if err := c.run(); err != nil {
		instrumentFailure(err)
		logs.WithTag("binary_id", tree.ID).
			WithTag("branching_factor", config.BranchingFactor).
			Warn(err)
		return nil, err
	}

	m := &Mbvh{
		ID:           uuid.NewString(),
		primitives:   tree.Primitives(),
		nodes:        c.nodes,
		leaves:       c.leaves,
		bbox:         tree.BoundingBox(),
		centroid:     tree.Centroid(),
		surfaceArea:  tree.SurfaceArea(),
		signedVolume: tree.SignedVolume(),
		config:       config,
	}

	m.stats = m.getStats(c.depth)
	m.stats.CollapseTime = time.Since(start)
	instrumentCollapse(config.BranchingFactor, start, m.stats)

	logger := logs.WithTag("aggregate_id", m.ID).
		WithTag("binary_id", tree.ID).
		WithTag("branching_factor", m.stats.BranchingFactor).
		WithTag("leaf_kind", m.stats.LeafKind).
		WithTag("nodes", m.stats.Nodes).
		WithTag("leaf_records", m.stats.LeafRecords).
		WithTag("max_depth", m.stats.MaxDepth).
		WithTag("collapse_time", m.stats.CollapseTime.String())
	if config.PrintStats {
		logger.Info("wide index built")
	} else {
		logger.Debug("wide index built")
	}

	return m, nil
}

func (m *Mbvh) getStats(depth int) Stats {
	stats := Stats{
		Nodes:           len(m.nodes),
		LeafRecords:     len(m.leaves.Records),
		MaxDepth:        depth,
		BranchingFactor: m.config.BranchingFactor,
		LeafKind:        m.leaves.Kind.String(),
	}
	for i := range m.nodes {
		for w := range m.nodes[i].Child {
			if m.nodes[i].IsLeafGroup(w) {
				stats.LeafGroups++
			}
		}
	}
	for _, rec := range m.leaves.Records {
		for _, index := range rec.PrimitiveIndex {
			if index >= 0 {
				stats.FilledLanes++
			}
		}
	}
	return stats
}

// Nodes returns the wide nodes. Callers must not modify them.
func (m *Mbvh) Nodes() []Node {
	return m.nodes
}

// Leaves returns the packed leaf records. Callers must not modify them.
func (m *Mbvh) Leaves() LeafPayload {
	return m.leaves
}

// Primitives returns the indexed primitives
func (m *Mbvh) Primitives() []geometry.Primitive {
	return m.primitives
}

// Config returns the collapse parameters
func (m *Mbvh) Config() Config {
	return m.config
}

// Stats returns the collapse statistics
func (m *Mbvh) Stats() Stats {
	return m.stats
}

// BoundingBox returns the box of all indexed primitives
func (m *Mbvh) BoundingBox() core.AABB {
	return m.bbox
}

// Centroid returns the mean of the primitive centroids
func (m *Mbvh) Centroid() r3.Vector {
	return m.centroid
}

// SurfaceArea returns the summed primitive surface area
func (m *Mbvh) SurfaceArea() float64 {
	return m.surfaceArea
}

// SignedVolume returns the summed primitive signed volume
func (m *Mbvh) SignedVolume() float64 {
	return m.signedVolume
}

// Normal is undefined for an aggregate
func (m *Mbvh) Normal(uv r2.Point) r3.Vector {
	return r3.Vector{}
}

// Intersect runs a ray query from the root
func (m *Mbvh) Intersect(r core.Ray, checkOcclusion, countHits bool) []geometry.Interaction {
	return geometry.IntersectAggregate(m, m.config.Index, r, countHits)
}

// FindClosestPoint runs a closest point query from the root
func (m *Mbvh) FindClosestPoint(s core.BoundingSphere) (geometry.Interaction, bool) {
	return geometry.ClosestPointAggregate(m, m.config.Index, s)
}

func (m *Mbvh) validateStartNode(nodeStartIndex int) error {
	if nodeStartIndex == 0 && len(m.nodes) == 0 {
		return nil
	}
	if nodeStartIndex < 0 || nodeStartIndex >= len(m.nodes) {
		return errors.New("start node out of range").
			WithType(core.ErrTypeInvalidStartNode).
			WithTag("node", nodeStartIndex).
			WithTag("nodes", len(m.nodes))
	}
	return nil
}
