package bvh

import (
	"math"
	"slices"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
)

// computeSpatialSplit bins the node box into equal slabs along every axis,
// clips each reference into the slabs it spans and scores every slab
// boundary. Only candidates that leave both children with fewer references
// than the node are considered.
func (b *builder) computeSpatialSplit(box core.AABB, start, end int) (dim int, coord, cost float64, ok bool) {
	n := end - start
	nBins := b.config.NBins
	nodeMeasure := b.measure(box)
	cost = math.MaxFloat64

	for axis := 0; axis < core.Dim; axis++ {
		lo := core.Axis(box.Min, axis)
		extent := core.Axis(box.Max, axis) - lo
		if extent <= 0 {
			continue
		}
		width := extent / float64(nBins)

		for i := range b.bins {
			b.bins[i] = bin{box: core.EmptyAABB()}
		}
		for _, ref := range b.references[start:end] {
			first := bucketIndex(core.Axis(ref.box.Min, axis), lo, extent, nBins)
			last := bucketIndex(core.Axis(ref.box.Max, axis), lo, extent, nBins)

			remaining := ref.box
			for j := first; j < last; j++ {
				left, right := b.splitReference(ref, axis, lo+width*float64(j+1), remaining)
				b.bins[j].box = b.bins[j].box.Union(left)
				remaining = right
			}
			b.bins[last].box = b.bins[last].box.Union(remaining)
			b.bins[first].entries++
			b.bins[last].exits++
		}

		right, nRight := core.EmptyAABB(), 0
		for i := nBins - 1; i > 0; i-- {
			right = right.Union(b.bins[i].box)
			nRight += b.bins[i].exits
			b.rightBoxes[i] = right
			b.rightCounts[i] = nRight
		}

		left, nLeft := core.EmptyAABB(), 0
		for i := 1; i < nBins; i++ {
			left = left.Union(b.bins[i-1].box)
			nLeft += b.bins[i-1].entries
			nR := b.rightCounts[i]
			if nLeft == 0 || nR == 0 || nLeft >= n || nR >= n {
				continue
			}

			c, valid := b.splitCost(left, b.rightBoxes[i], nLeft, nR, nodeMeasure)
			if valid && c < cost {
				cost = c
				dim = axis
				coord = lo + width*float64(i)
				ok = true
			}
		}
	}

	return dim, coord, cost, ok
}

// splitReference clips the part of ref inside box against the plane
// x[dim] = coord. Primitives that cannot clip themselves are split by their
// box.
func (b *builder) splitReference(ref reference, dim int, coord float64, box core.AABB) (left, right core.AABB) {
	if core.Axis(box.Max, dim) <= coord {
		return box, core.EmptyAABB()
	}
	if core.Axis(box.Min, dim) >= coord {
		return core.EmptyAABB(), box
	}

	splitter, ok := b.primitives[ref.index].(geometry.Splitter)
	if !ok {
		left, right = box, box
		left.Max = core.WithAxis(left.Max, dim, coord)
		right.Min = core.WithAxis(right.Min, dim, coord)
		return left, right
	}

	l, r := splitter.Split(dim, coord)
	left, right = l.Intersect(box), r.Intersect(box)
	if !left.IsValid() {
		left = core.EmptyAABB()
	}
	if !right.IsValid() {
		right = core.EmptyAABB()
	}
	return left, right
}

// performSpatialSplit rewrites [start, end) as all left references followed
// by all right references, duplicating the ones that straddle the plane. It
// returns the new boundary and the number of references added, or false
// when the split would not shrink both sides.
func (b *builder) performSpatialSplit(dim int, coord float64, start, end int) (mid, added int, ok bool) {
	n := end - start
	lefts := make([]reference, 0, n)
	rights := make([]reference, 0, n)

	for _, ref := range b.references[start:end] {
		left, right := b.splitReference(ref, dim, coord, ref.box)
		switch {
		case left.IsEmpty() && right.IsEmpty():
			// Clipping lost the primitive; keep it whole on its centroid side
			if core.Axis(ref.centroid, dim) < coord {
				lefts = append(lefts, ref)
			} else {
				rights = append(rights, ref)
			}
		case right.IsEmpty():
			lefts = append(lefts, ref)
		case left.IsEmpty():
			rights = append(rights, ref)
		default:
			lefts = append(lefts, reference{index: ref.index, box: left, centroid: left.Center()})
			rights = append(rights, reference{index: ref.index, box: right, centroid: right.Center()})
		}
	}

	if len(lefts) == 0 || len(rights) == 0 || len(lefts) >= n || len(rights) >= n {
		return 0, 0, false
	}

	b.references = slices.Replace(b.references, start, end, append(lefts, rights...)...)
	return start + len(lefts), len(lefts) + len(rights) - n, true
}
