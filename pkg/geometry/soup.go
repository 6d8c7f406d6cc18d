package geometry

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/golang/geo/r3"
)

// PolygonSoup is an indexed set of vertex positions. Every group of Indices
// forms one polygon: pairs for segment soups and triples for triangle soups.
type PolygonSoup struct {
	Positions []r3.Vector
	Indices   []int
}

// Triangles builds one triangle per index triple
func (p PolygonSoup) Triangles() ([]Primitive, error) {
	if err := p.validate(3); err != nil {
		return nil, err
	}

	primitives := make([]Primitive, 0, len(p.Indices)/3)
	for i := 0; i < len(p.Indices); i += 3 {
		primitives = append(primitives, NewTriangle(
			p.Positions[p.Indices[i]],
			p.Positions[p.Indices[i+1]],
			p.Positions[p.Indices[i+2]],
		))
	}
	return primitives, nil
}

// Segments builds one segment per index pair
func (p PolygonSoup) Segments() ([]Primitive, error) {
	if err := p.validate(2); err != nil {
		return nil, err
	}

	primitives := make([]Primitive, 0, len(p.Indices)/2)
	for i := 0; i < len(p.Indices); i += 2 {
		primitives = append(primitives, NewSegment(
			p.Positions[p.Indices[i]],
			p.Positions[p.Indices[i+1]],
		))
	}
	return primitives, nil
}

func (p PolygonSoup) validate(arity int) error {
	if len(p.Indices)%arity != 0 {
		return errors.New("polygon soup indices are not a multiple of the polygon size").
			WithType(core.ErrTypeInvalidPrimitive).
			WithTag("indices", len(p.Indices)).
			WithTag("arity", arity)
	}

	for i, index := range p.Indices {
		if index < 0 || index >= len(p.Positions) {
			return errors.New("polygon soup index out of bounds").
				WithType(core.ErrTypeInvalidPrimitive).
				WithTag("position", i).
				WithTag("index", index).
				WithTag("positions", len(p.Positions))
		}
	}

	for _, v := range p.Positions {
		if !core.IsFinite(v) {
			return errors.New("polygon soup position is not finite").
				WithType(core.ErrTypeInvalidPrimitive).
				WithTag("value", v.String())
		}
	}
	return nil
}
