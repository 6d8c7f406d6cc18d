package bvh

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
)

// CostHeuristic selects how the builder scores candidate splits
type CostHeuristic int

const (
	// LongestAxisCenter splits at the middle of the centroid box's longest
	// axis. It is also the fallback for degenerate nodes.
	LongestAxisCenter CostHeuristic = iota
	// SurfaceArea is the surface area heuristic over bucketed centroids
	SurfaceArea
	// OverlapSurfaceArea penalizes surface overlap between the two children
	// and enables spatial splits
	OverlapSurfaceArea
	// Volume is SurfaceArea with box volume as the measure
	Volume
	// OverlapVolume penalizes volume overlap and enables spatial splits
	OverlapVolume
)

var heuristicNames = map[CostHeuristic]string{
	LongestAxisCenter:  "longest-axis-center",
	SurfaceArea:        "surface-area",
	OverlapSurfaceArea: "overlap-surface-area",
	Volume:             "volume",
	OverlapVolume:      "overlap-volume",
}

func (h CostHeuristic) String() string {
	if name, ok := heuristicNames[h]; ok {
		return name
	}
	return "unknown"
}

// usesVolume reports whether the heuristic measures boxes by volume
func (h CostHeuristic) usesVolume() bool {
	return h == Volume || h == OverlapVolume
}

// usesOverlap reports whether the heuristic scores child overlap, which is
// also what enables spatial splits
func (h CostHeuristic) usesOverlap() bool {
	return h == OverlapSurfaceArea || h == OverlapVolume
}

// ParseCostHeuristic parses a heuristic name as printed by String. Matching
// is case insensitive.
func ParseCostHeuristic(s string) (CostHeuristic, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for h, n := range heuristicNames {
		if n == name {
			return h, nil
		}
	}
	return 0, errors.New("unknown cost heuristic").
		WithType(core.ErrTypeInvalidConfig).
		WithTag("heuristic", s)
}

// Config contains the build parameters of the binary index
type Config struct {
	CostHeuristic  CostHeuristic // Split scoring
	SplitAlpha     float64       // Overlap fraction of the root measure above which spatial splits are tried
	LeafSize       int           // Maximum references per leaf
	NBuckets       int           // Object split resolution per axis
	NBins          int           // Spatial split resolution
	Index          int           // Aggregate index stamped on interactions when nested
	ComputeNormals bool          // Fill Interaction.Normal for returned interactions
	PrintStats     bool          // Log build statistics at info level instead of debug
}

// DefaultConfig returns the default build parameters
func DefaultConfig() Config {
	return Config{
		CostHeuristic: SurfaceArea,
		SplitAlpha:    1e-5,
		LeafSize:      4,
		NBuckets:      8,
		NBins:         8,
	}
}

func (c Config) validate() error {
	if _, ok := heuristicNames[c.CostHeuristic]; !ok {
		return errors.New("unknown cost heuristic").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("heuristic", int(c.CostHeuristic))
	}
	if c.LeafSize < 1 {
		return errors.New("leaf size must be at least 1").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("leaf_size", c.LeafSize)
	}
	if c.NBuckets < 2 {
		return errors.New("at least 2 buckets are required").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("buckets", c.NBuckets)
	}
	if c.NBins < 2 {
		return errors.New("at least 2 bins are required").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("bins", c.NBins)
	}
	if !(c.SplitAlpha >= 0) {
		return errors.New("split alpha must be non-negative").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("split_alpha", c.SplitAlpha)
	}
	return nil
}
