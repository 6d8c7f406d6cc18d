package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
)

// RandomSegments scatters n segments in the z=0 square [0, extent]^2. Segment
// lengths are scaled so that the expected density does not depend on n.
func RandomSegments(rng *rand.Rand, n int, extent float64) []geometry.Primitive {
	maxLength := 4 * extent / math.Sqrt(float64(max(n, 1)))
	primitives := make([]geometry.Primitive, n)
	for i := range primitives {
		center := r3.Vector{X: rng.Float64() * extent, Y: rng.Float64() * extent}
		angle := rng.Float64() * 2 * math.Pi
		half := 0.5 * maxLength * (0.1 + 0.9*rng.Float64())
		d := r3.Vector{X: math.Cos(angle) * half, Y: math.Sin(angle) * half}
		primitives[i] = geometry.NewSegment(center.Sub(d), center.Add(d))
	}
	return primitives
}

// RandomTriangles scatters n triangles in the cube [0, extent]^3
func RandomTriangles(rng *rand.Rand, n int, extent float64) []geometry.Primitive {
	size := 3 * extent / math.Cbrt(float64(max(n, 1)))
	cube := core.NewAABB(r3.Vector{}, core.Splat(extent))
	primitives := make([]geometry.Primitive, n)
	for i := range primitives {
		center := randomPoint(rng, cube, false)
		vertex := func() r3.Vector {
			return center.Add(r3.Vector{
				X: (rng.Float64() - 0.5) * size,
				Y: (rng.Float64() - 0.5) * size,
				Z: (rng.Float64() - 0.5) * size,
			})
		}
		v0 := vertex()
		v1 := vertex()
		v2 := vertex()
		primitives[i] = geometry.NewTriangle(v0, v1, v2)
	}
	return primitives
}

// TriangleGrid builds a rows x cols height field of cell size cellSize, two
// triangles per cell, through an indexed soup
func TriangleGrid(rows, cols int, cellSize float64) ([]geometry.Primitive, error) {
	soup := geometry.PolygonSoup{
		Positions: make([]r3.Vector, 0, (rows+1)*(cols+1)),
		Indices:   make([]int, 0, 6*rows*cols),
	}
	for i := 0; i <= rows; i++ {
		for j := 0; j <= cols; j++ {
			x, y := float64(j)*cellSize, float64(i)*cellSize
			soup.Positions = append(soup.Positions, r3.Vector{
				X: x,
				Y: y,
				Z: 0.25 * cellSize * math.Sin(x) * math.Cos(y),
			})
		}
	}

	stride := cols + 1
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v0 := i*stride + j
			v1 := v0 + 1
			v2 := v0 + stride + 1
			v3 := v0 + stride
			soup.Indices = append(soup.Indices,
				v0, v1, v2, // lower triangle
				v0, v2, v3, // upper triangle
			)
		}
	}

	return soup.Triangles()
}

// CollinearSegments places n segments of the given length along the x axis,
// separated by gap
func CollinearSegments(n int, length, gap float64) []geometry.Primitive {
	primitives := make([]geometry.Primitive, n)
	for i := range primitives {
		x := float64(i) * (length + gap)
		primitives[i] = geometry.NewSegment(r3.Vector{X: x}, r3.Vector{X: x + length})
	}
	return primitives
}

// ScatteredSpheres scatters n spheres in the cube [0, extent]^3 with radii
// scaled so that neighbours overlap now and then
func ScatteredSpheres(rng *rand.Rand, n int, extent float64) []geometry.Primitive {
	maxRadius := extent / math.Cbrt(float64(max(n, 1)))
	cube := core.NewAABB(r3.Vector{}, core.Splat(extent))
	primitives := make([]geometry.Primitive, n)
	for i := range primitives {
		center := randomPoint(rng, cube, false)
		primitives[i] = geometry.NewSphere(center, maxRadius*(0.1+0.9*rng.Float64()))
	}
	return primitives
}

// RandomRays returns n rays starting inside bounds grown by 10%, with
// uniformly distributed directions. Planar rays stay in the z=0 plane.
func RandomRays(rng *rand.Rand, n int, bounds core.AABB, planar bool) []core.Ray {
	region := grow(bounds, 0.1)
	rays := make([]core.Ray, n)
	for i := range rays {
		origin := randomPoint(rng, region, planar)
		rays[i] = core.NewRay(origin, randomDirection(rng, planar))
	}
	return rays
}

// RandomSpheres returns n search spheres with squared radius r2 centered
// inside bounds grown by 10%
func RandomSpheres(rng *rand.Rand, n int, bounds core.AABB, planar bool, r2 float64) []core.BoundingSphere {
	region := grow(bounds, 0.1)
	spheres := make([]core.BoundingSphere, n)
	for i := range spheres {
		spheres[i] = core.NewBoundingSphere(randomPoint(rng, region, planar), r2)
	}
	return spheres
}

func grow(bounds core.AABB, fraction float64) core.AABB {
	if bounds.IsEmpty() {
		return core.NewAABB(r3.Vector{}, core.Splat(1))
	}
	size := bounds.Size()
	margin := fraction * math.Max(size.X, math.Max(size.Y, size.Z))
	return bounds.Expand(margin)
}

func randomPoint(rng *rand.Rand, region core.AABB, planar bool) r3.Vector {
	size := region.Size()
	p := r3.Vector{
		X: region.Min.X + rng.Float64()*size.X,
		Y: region.Min.Y + rng.Float64()*size.Y,
		Z: region.Min.Z + rng.Float64()*size.Z,
	}
	if planar {
		p.Z = 0
	}
	return p
}

// randomDirection returns a unit direction, uniform on the circle or sphere
func randomDirection(rng *rand.Rand, planar bool) r3.Vector {
	if planar {
		angle := rng.Float64() * 2 * math.Pi
		return r3.Vector{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	z := 2*rng.Float64() - 1
	phi := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return r3.Vector{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}
