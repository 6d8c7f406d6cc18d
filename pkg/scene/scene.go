// Package scene generates reproducible primitive sets and query workloads
// for exercising the spatial indices.
package scene

import (
	"math/rand"
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
)

// Scene is a generated primitive set
type Scene struct {
	Name       string
	Primitives []geometry.Primitive
	Bounds     core.AABB
	Planar     bool // All primitives lie in the z=0 plane
}

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Description string `json:"description"` // One line description
	Planar      bool   `json:"planar"`      // Queries stay in the z=0 plane
}

type generator func(rng *rand.Rand, n int) ([]geometry.Primitive, error)

var builtins = map[string]struct {
	info     SceneInfo
	generate generator
}{
	"segments": {
		info: SceneInfo{ID: "segments", Description: "Random segments in the unit square", Planar: true},
		generate: func(rng *rand.Rand, n int) ([]geometry.Primitive, error) {
			return RandomSegments(rng, n, 1), nil
		},
	},
	"triangles": {
		info: SceneInfo{ID: "triangles", Description: "Random triangles in the unit cube"},
		generate: func(rng *rand.Rand, n int) ([]geometry.Primitive, error) {
			return RandomTriangles(rng, n, 1), nil
		},
	},
	"grid": {
		info: SceneInfo{ID: "grid", Description: "Triangulated height field with about n triangles"},
		generate: func(rng *rand.Rand, n int) ([]geometry.Primitive, error) {
			side := 1
			for 2*side*side < n {
				side++
			}
			return TriangleGrid(side, side, 1/float64(side))
		},
	},
	"spheres": {
		info: SceneInfo{ID: "spheres", Description: "Random spheres in the unit cube, stored as generic primitives"},
		generate: func(rng *rand.Rand, n int) ([]geometry.Primitive, error) {
			return ScatteredSpheres(rng, n, 1), nil
		},
	},
	"collinear": {
		info: SceneInfo{ID: "collinear", Description: "Unit segments in a row along the x axis", Planar: true},
		generate: func(rng *rand.Rand, n int) ([]geometry.Primitive, error) {
			return CollinearSegments(n, 1, 1), nil
		},
	},
}

// ListScenes returns the built-in scenes sorted by id
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		scenes = append(scenes, b.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// New generates the built-in scene id with about n primitives. The same
// seed always yields the same scene.
func New(id string, n int, seed int64) (*Scene, error) {
	b, ok := builtins[id]
	if !ok {
		return nil, errors.New("unknown scene").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("scene", id)
	}
	if n < 0 {
		return nil, errors.New("primitive count must not be negative").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("primitives", n)
	}

	primitives, err := b.generate(rand.New(rand.NewSource(seed)), n)
	if err != nil {
		return nil, errors.New("generating scene failed").
			WithTag("scene", id).
			Wrap(err)
	}

	return FromPrimitives(id, primitives, b.info.Planar), nil
}

// FromPrimitives wraps an existing primitive set
func FromPrimitives(name string, primitives []geometry.Primitive, planar bool) *Scene {
	bounds := core.EmptyAABB()
	for _, p := range primitives {
		bounds = bounds.Union(p.BoundingBox())
	}

	return &Scene{
		Name:       name,
		Primitives: primitives,
		Bounds:     bounds,
		Planar:     planar,
	}
}

// Rays generates n random rays through the scene
func (s *Scene) Rays(rng *rand.Rand, n int) []core.Ray {
	return RandomRays(rng, n, s.Bounds, s.Planar)
}

// Spheres generates n random search spheres with squared radius r2
func (s *Scene) Spheres(rng *rand.Rand, n int, r2 float64) []core.BoundingSphere {
	return RandomSpheres(rng, n, s.Bounds, s.Planar, r2)
}
