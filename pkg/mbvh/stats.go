package mbvh

import "time"

// Stats describes the shape of a collapsed wide index
type Stats struct {
	Nodes           int           `json:"nodes"`
	LeafGroups      int           `json:"leaf_groups"`
	LeafRecords     int           `json:"leaf_records"`
	FilledLanes     int           `json:"filled_lanes"`
	MaxDepth        int           `json:"max_depth"`
	BranchingFactor int           `json:"branching_factor"`
	LeafKind        string        `json:"leaf_kind"`
	CollapseTime    time.Duration `json:"collapse_time"`
}

// LaneUtilization returns the share of leaf lanes holding a primitive
func (s Stats) LaneUtilization() float64 {
	lanes := s.LeafRecords * s.BranchingFactor
	if lanes == 0 {
		return 0
	}
	return float64(s.FilledLanes) / float64(lanes)
}
