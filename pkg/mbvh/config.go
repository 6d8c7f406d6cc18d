package mbvh

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
)

// maxDepths is the deepest wide tree each branching factor can encode
var maxDepths = map[int]int{
	2:  64,
	4:  96,
	8:  154,
	16: 256,
}

// Config holds the parameters of a wide index
type Config struct {
	BranchingFactor int  // Children per wide node: 2, 4, 8 or 16
	Index           int  // Aggregate index stamped on interactions
	ComputeNormals  bool // Fill in normals of returned interactions
	PrintStats      bool // Log collapse statistics at info level
}

// DefaultConfig returns a four wide configuration
func DefaultConfig() Config {
	return Config{BranchingFactor: 4}
}

// MaxDepth returns the deepest wide tree the configured branching factor
// supports, or 0 when the factor is unsupported
func (c Config) MaxDepth() int {
	return maxDepths[c.BranchingFactor]
}

func (c Config) validate() error {
	if _, ok := maxDepths[c.BranchingFactor]; !ok {
		return errors.New("branching factor must be 2, 4, 8 or 16").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("branching_factor", c.BranchingFactor)
	}
	return nil
}
