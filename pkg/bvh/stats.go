package bvh

import "time"

// Stats describes the shape of a built binary index
type Stats struct {
	Primitives           int           `json:"primitives"`
	References           int           `json:"references"`
	DuplicatedReferences int           `json:"duplicated_references"`
	Nodes                int           `json:"nodes"`
	Leafs                int           `json:"leafs"`
	MaxDepth             int           `json:"max_depth"`
	AvgLeafDepth         float64       `json:"avg_leaf_depth"`
	BuildTime            time.Duration `json:"build_time"`
}

// getStats walks the tree and returns its statistics
func (t *Sbvh) getStats() Stats {
	stats := Stats{
		Primitives:           len(t.primitives),
		References:           len(t.references),
		DuplicatedReferences: len(t.references) - len(t.primitives),
	}
	if len(t.nodes) == 0 {
		return stats
	}

	t.collectStats(0, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.Leafs > 0 {
		stats.AvgLeafDepth = stats.AvgLeafDepth / float64(stats.Leafs)
	}

	return stats
}

// collectStats recursively collects statistics about the subtree at node
func (t *Sbvh) collectStats(node, depth int, stats *Stats) {
	stats.Nodes++

	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	n := t.nodes[node]
	if n.IsLeaf() {
		stats.Leafs++
		stats.AvgLeafDepth += float64(depth) // Accumulate depth for average calculation
		return
	}

	t.collectStats(node+1, depth+1, stats)
	t.collectStats(node+n.RightOffset, depth+1, stats)
}
