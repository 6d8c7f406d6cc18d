package mbvh

import (
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
)

// LeafRecord packs up to B primitives lane by lane. Positions is indexed by
// vertex slot, then axis, then lane. Unused lanes have primitive index -1.
type LeafRecord struct {
	Positions      [][core.Dim][]float64
	PrimitiveIndex []int32
}

// LeafPayload holds the leaf records of a wide index. All records share the
// vertex layout of Kind.
type LeafPayload struct {
	Kind    geometry.Kind
	Records []LeafRecord
}

func newLeafRecord(kind geometry.Kind, width int) LeafRecord {
	rec := LeafRecord{
		Positions:      make([][core.Dim][]float64, kind.Points()),
		PrimitiveIndex: make([]int32, width),
	}
	for slot := range rec.Positions {
		for axis := 0; axis < core.Dim; axis++ {
			rec.Positions[slot][axis] = make([]float64, width)
		}
	}
	for lane := range rec.PrimitiveIndex {
		rec.PrimitiveIndex[lane] = -1
	}
	return rec
}

// Width returns the number of lanes
func (rec *LeafRecord) Width() int {
	return len(rec.PrimitiveIndex)
}

// Point returns vertex slot of the primitive in lane
func (rec *LeafRecord) Point(slot, lane int) r3.Vector {
	p := rec.Positions[slot]
	return r3.Vector{X: p[0][lane], Y: p[1][lane], Z: p[2][lane]}
}

func (rec *LeafRecord) setPoint(slot, lane int, v r3.Vector) {
	for axis := 0; axis < core.Dim; axis++ {
		rec.Positions[slot][axis][lane] = core.Axis(v, axis)
	}
}

// vertices returns the points a primitive of the given kind stores in its
// lane. Generic primitives keep only their centroid.
func vertices(kind geometry.Kind, p geometry.Primitive) []r3.Vector {
	switch kind {
	case geometry.KindSegment:
		s := p.(*geometry.Segment)
		return []r3.Vector{s.A, s.B}
	case geometry.KindTriangle:
		t := p.(*geometry.Triangle)
		return []r3.Vector{t.V0, t.V1, t.V2}
	default:
		return []r3.Vector{p.Centroid()}
	}
}

// appendGroup packs the primitives into consecutive records and returns the
// index of the first record and the number of records used.
func (l *LeafPayload) appendGroup(primitives []geometry.Primitive, indices []int, width int) (start, count int) {
	start = len(l.Records)
	for offset := 0; offset < len(indices); offset += width {
		rec := newLeafRecord(l.Kind, width)
		for lane, index := range indices[offset:min(offset+width, len(indices))] {
			rec.PrimitiveIndex[lane] = int32(index)
			for slot, v := range vertices(l.Kind, primitives[index]) {
				rec.setPoint(slot, lane, v)
			}
		}
		l.Records = append(l.Records, rec)
	}
	return start, len(l.Records) - start
}
