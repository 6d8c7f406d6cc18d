package query

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/golang/geo/r3"
)

// Kind selects the query a task runs
type Kind int

const (
	// ClosestHit finds the nearest ray hit and shrinks the ray to it
	ClosestHit Kind = iota
	// Occlusion reports whether the ray hits anything
	Occlusion
	// AllHits returns every primitive the ray crosses, nearest first
	AllHits
	// ClosestPoint finds the point nearest to a sphere center
	ClosestPoint
)

var kindNames = map[Kind]string{
	ClosestHit:   "closest-hit",
	Occlusion:    "occlusion",
	AllHits:      "all-hits",
	ClosestPoint: "closest-point",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the kind with the given name
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.New("unknown query kind").
		WithType(core.ErrTypeInvalidConfig).
		WithTag("kind", name)
}

// Task is one query against the pool's aggregate
type Task struct {
	ID             int
	Kind           Kind
	Ray            core.Ray            // Ray kinds
	Sphere         core.BoundingSphere // ClosestPoint
	BoundaryHint   r3.Vector           // ClosestPoint
	StartNode      int
	AggregateIndex int
}

// RayTask returns a ray query task
func RayTask(id int, kind Kind, r core.Ray) Task {
	return Task{ID: id, Kind: kind, Ray: r}
}

// ClosestPointTask returns a closest point query task
func ClosestPointTask(id int, s core.BoundingSphere, boundaryHint r3.Vector) Task {
	return Task{ID: id, Kind: ClosestPoint, Sphere: s, BoundaryHint: boundaryHint}
}

// Result is the outcome of a task. Ray and Sphere hold the query state after
// it ran: a closest hit shrinks Ray.TMax and a closest point shrinks
// Sphere.R2.
type Result struct {
	TaskID       int
	Kind         Kind
	Hits         []geometry.Interaction
	Closest      geometry.Interaction
	Found        bool
	Count        int
	NodesVisited int
	Ray          core.Ray
	Sphere       core.BoundingSphere
	Error        error
}

// run executes the task against agg
func (t Task) run(agg geometry.Aggregate) Result {
	result := Result{TaskID: t.ID, Kind: t.Kind, Ray: t.Ray, Sphere: t.Sphere}

	switch t.Kind {
	case ClosestHit, Occlusion, AllHits:
		result.Count, result.Error = agg.IntersectFromNode(&result.Ray, &result.Hits, t.StartNode, t.AggregateIndex,
			&result.NodesVisited, t.Kind == Occlusion, t.Kind == AllHits)
		result.Found = result.Count > 0
	case ClosestPoint:
		result.Closest = geometry.NewInteraction()
		result.Found, result.Error = agg.FindClosestPointFromNode(&result.Sphere, &result.Closest, t.StartNode, t.AggregateIndex,
			t.BoundaryHint, &result.NodesVisited)
		if result.Found {
			result.Count = 1
		}
	default:
		result.Error = errors.New("unknown query kind").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("kind", int(t.Kind))
	}

	return result
}
