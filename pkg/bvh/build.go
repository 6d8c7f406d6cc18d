package bvh

import (
	"math"
	"slices"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
)

// reference is one entry of the permutable working set. Spatial splits can
// leave several references to the same primitive, each with a clipped box.
type reference struct {
	index    int
	box      core.AABB
	centroid r3.Vector
}

type bucket struct {
	box   core.AABB
	count int
}

type bin struct {
	box     core.AABB
	entries int
	exits   int
}

// builder owns the scratch buffers of one build
type builder struct {
	config      Config
	primitives  []geometry.Primitive
	references  []reference
	nodes       []Node
	rootMeasure float64

	buckets     []bucket
	rightBoxes  []core.AABB
	rightCounts []int
	bins        []bin
}

func newBuilder(primitives []geometry.Primitive, config Config) *builder {
	b := &builder{
		config:      config,
		primitives:  primitives,
		references:  make([]reference, len(primitives)),
		nodes:       make([]Node, 0, 2*len(primitives)),
		buckets:     make([]bucket, config.NBuckets),
		rightBoxes:  make([]core.AABB, max(config.NBuckets, config.NBins)),
		rightCounts: make([]int, max(config.NBuckets, config.NBins)),
		bins:        make([]bin, config.NBins),
	}
	for i, p := range primitives {
		b.references[i] = reference{index: i, box: p.BoundingBox(), centroid: p.Centroid()}
	}
	return b
}

func (b *builder) build() {
	if len(b.references) == 0 {
		return
	}
	rootBox, _ := b.bounds(0, len(b.references))
	b.rootMeasure = b.measure(rootBox)
	b.buildRecursive(0, len(b.references))
}

// buildRecursive emits the subtree over references [start, end) and returns
// how many references spatial splits added to the range
func (b *builder) buildRecursive(start, end int) int {
	nodeIndex := len(b.nodes)
	box, centroidBox := b.bounds(start, end)
	b.nodes = append(b.nodes, Node{Box: box, Start: start, ReferenceCount: end - start})

	n := end - start
	if n <= b.config.LeafSize {
		return 0
	}

	dim, coord, cost, overlap := b.computeObjectSplit(box, centroidBox, start, end)

	added := 0
	mid := -1
	if b.config.CostHeuristic.usesOverlap() && overlap > b.config.SplitAlpha*b.rootMeasure {
		spatialDim, spatialCoord, spatialCost, ok := b.computeSpatialSplit(box, start, end)
		if ok && spatialCost < cost {
			mid, added, ok = b.performSpatialSplit(spatialDim, spatialCoord, start, end)
			if !ok {
				mid = -1
			}
		}
	}
	if mid < 0 {
		mid = b.performObjectSplit(dim, coord, start, end)
	}
	end += added

	leftAdded := b.buildRecursive(start, mid)
	mid += leftAdded
	end += leftAdded

	b.nodes[nodeIndex].RightOffset = len(b.nodes) - nodeIndex
	rightAdded := b.buildRecursive(mid, end)
	end += rightAdded

	b.nodes[nodeIndex].ReferenceCount = end - start
	return added + leftAdded + rightAdded
}

// bounds returns the union of the reference boxes and of the reference
// centroids in [start, end)
func (b *builder) bounds(start, end int) (box, centroidBox core.AABB) {
	box, centroidBox = core.EmptyAABB(), core.EmptyAABB()
	for _, ref := range b.references[start:end] {
		box = box.Union(ref.box)
		centroidBox = centroidBox.ExpandToInclude(ref.centroid)
	}
	return box, centroidBox
}

// measure is the box measure the heuristic minimizes
func (b *builder) measure(box core.AABB) float64 {
	if b.config.CostHeuristic.usesVolume() {
		return box.Volume()
	}
	return box.SurfaceArea()
}

func (b *builder) rawMeasure(box core.AABB) float64 {
	if b.config.CostHeuristic.usesVolume() {
		return box.RawVolume()
	}
	return box.RawSurfaceArea()
}

// splitCost scores a candidate split with nL references in box l and nR in
// box r. Overlap heuristics report false when a child has no measure.
func (b *builder) splitCost(l, r core.AABB, nL, nR int, nodeMeasure float64) (float64, bool) {
	mL, mR := b.measure(l), b.measure(r)
	if !b.config.CostHeuristic.usesOverlap() {
		return (float64(nL)*mL + float64(nR)*mR) / nodeMeasure, true
	}
	if mL <= 0 || mR <= 0 {
		return 0, false
	}

	weight := float64(nL)/mR + float64(nR)/mL
	overlap := l.Intersect(r)
	if overlap.IsValid() {
		return weight * b.measure(overlap), true
	}
	// Disjoint children score better the farther apart they are
	return -weight * math.Abs(b.rawMeasure(overlap)), true
}

// computeObjectSplit picks the split plane for a centroid partition. It
// returns the split axis and coordinate, the estimated cost, and the measure
// of the overlap between the two resulting children.
func (b *builder) computeObjectSplit(box, centroidBox core.AABB, start, end int) (dim int, coord, cost, overlap float64) {
	nodeMeasure := b.measure(box)
	extent := centroidBox.Size()
	degenerate := nodeMeasure <= 0 || (extent.X <= 0 && extent.Y <= 0 && extent.Z <= 0)

	cost = math.MaxFloat64
	dim = -1
	if b.config.CostHeuristic != LongestAxisCenter && !degenerate {
		nBuckets := b.config.NBuckets
		for axis := 0; axis < core.Dim; axis++ {
			axisMin := core.Axis(centroidBox.Min, axis)
			axisExtent := core.Axis(extent, axis)
			if axisExtent <= 0 {
				continue
			}

			for i := range b.buckets {
				b.buckets[i] = bucket{box: core.EmptyAABB()}
			}
			for _, ref := range b.references[start:end] {
				i := bucketIndex(core.Axis(ref.centroid, axis), axisMin, axisExtent, nBuckets)
				b.buckets[i].box = b.buckets[i].box.Union(ref.box)
				b.buckets[i].count++
			}

			// Sweep from the right to get the right child of every boundary
			right, nRight := core.EmptyAABB(), 0
			for i := nBuckets - 1; i > 0; i-- {
				right = right.Union(b.buckets[i].box)
				nRight += b.buckets[i].count
				b.rightBoxes[i] = right
				b.rightCounts[i] = nRight
			}

			left, nLeft := core.EmptyAABB(), 0
			for i := 1; i < nBuckets; i++ {
				left = left.Union(b.buckets[i-1].box)
				nLeft += b.buckets[i-1].count
				nR := b.rightCounts[i]
				if nLeft == 0 || nR == 0 {
					continue
				}

				c, ok := b.splitCost(left, b.rightBoxes[i], nLeft, nR, nodeMeasure)
				if ok && c < cost {
					cost = c
					dim = axis
					coord = axisMin + axisExtent*float64(i)/float64(nBuckets)
					overlap = b.measure(left.Intersect(b.rightBoxes[i]))
				}
			}
		}
	}

	if dim < 0 {
		// Fall back to the middle of the longest centroid axis
		dim = centroidBox.LongestAxis()
		coord = core.Axis(centroidBox.Center(), dim)
		return dim, coord, math.MaxFloat64, 0
	}
	return dim, coord, cost, overlap
}

// bucketIndex maps x in [lo, lo+extent] to one of n equal-width buckets
func bucketIndex(x, lo, extent float64, n int) int {
	i := int(float64(n) * (x - lo) / extent)
	return max(0, min(i, n-1))
}

// performObjectSplit partitions [start, end) in place so that references
// with centroids below coord come first and returns the boundary. A one
// sided partition falls back to a median split along dim.
func (b *builder) performObjectSplit(dim int, coord float64, start, end int) int {
	mid := start
	for i := start; i < end; i++ {
		if core.Axis(b.references[i].centroid, dim) < coord {
			b.references[i], b.references[mid] = b.references[mid], b.references[i]
			mid++
		}
	}
	if mid != start && mid != end {
		return mid
	}

	slices.SortStableFunc(b.references[start:end], func(x, y reference) int {
		cx, cy := core.Axis(x.centroid, dim), core.Axis(y.centroid, dim)
		switch {
		case cx < cy:
			return -1
		case cx > cy:
			return 1
		default:
			return x.index - y.index
		}
	})
	return start + (end-start)/2
}
