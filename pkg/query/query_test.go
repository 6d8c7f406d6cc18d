package query

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-geomquery/pkg/baseline"
	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/df07/go-geomquery/pkg/mbvh"
	"github.com/df07/go-geomquery/pkg/scene"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func mixedTasks(rng *rand.Rand, bounds core.AABB, n int) []Task {
	tasks := make([]Task, 0, 4*n)
	for _, r := range scene.RandomRays(rng, n, bounds, true) {
		tasks = append(tasks,
			RayTask(0, ClosestHit, r),
			RayTask(0, Occlusion, r),
			RayTask(0, AllHits, r),
		)
	}
	for _, s := range scene.RandomSpheres(rng, n, bounds, true, math.Inf(1)) {
		tasks = append(tasks, ClosestPointTask(0, s, r3.Vector{}))
	}
	return tasks
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{ClosestHit, Occlusion, AllHits, ClosestPoint} {
		parsed, err := ParseKind(" " + k.String() + " ")
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}

	_, err := ParseKind("nearest")
	require.Equal(t, core.ErrTypeInvalidConfig, errors.Type(err))
	require.Equal(t, "unknown", Kind(42).String())
}

func TestRunBatch_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	primitives := scene.RandomSegments(rng, 300, 1)
	tree, err := bvh.New(primitives, bvh.DefaultConfig())
	require.NoError(t, err)
	wide, err := mbvh.New(tree, mbvh.DefaultConfig())
	require.NoError(t, err)
	tasks := mixedTasks(rng, tree.BoundingBox(), 50)

	for _, agg := range []geometry.Aggregate{tree, wide} {
		results, stats := RunBatch(agg, tasks, 4)
		require.Len(t, results, len(tasks))
		require.Equal(t, len(tasks), stats.Queries)
		require.Zero(t, stats.Errors)
		require.Positive(t, stats.AvgNodesVisited)
		require.GreaterOrEqual(t, float64(stats.MaxNodesVisited), stats.AvgNodesVisited)

		for i, task := range tasks {
			result := results[i]
			require.Equal(t, i, result.TaskID)
			require.Equal(t, task.Kind, result.Kind)

			expected := task.run(agg)
			require.NoError(t, expected.Error)
			require.Equal(t, expected.Found, result.Found)
			require.Equal(t, expected.Count, result.Count)
			require.Equal(t, expected.NodesVisited, result.NodesVisited)
			require.Equal(t, expected.Hits, result.Hits)
			require.Equal(t, expected.Closest, result.Closest)
		}
	}
}

func TestRunBatch_ShrinksQueryState(t *testing.T) {
	b, err := baseline.New(scene.CollinearSegments(4, 1, 1), baseline.Config{})
	require.NoError(t, err)

	tasks := []Task{
		RayTask(7, ClosestHit, core.NewRay(r3.Vector{X: 2.5, Y: -2}, r3.Vector{Y: 1})),
		RayTask(8, ClosestHit, core.NewRay(r3.Vector{X: 1.5, Y: -2}, r3.Vector{Y: 1})),
		ClosestPointTask(9, core.NewBoundingSphere(r3.Vector{X: 4.5, Y: 1}, 4), r3.Vector{}),
	}
	results, stats := RunBatch(b, tasks, 2)

	require.Equal(t, 3, stats.Queries)
	require.Equal(t, 2, stats.Found)
	require.Equal(t, 0, results[0].TaskID)
	require.True(t, results[0].Found)
	require.InDelta(t, 2.0, results[0].Ray.TMax, 1e-12)
	require.False(t, results[1].Found)
	require.True(t, math.IsInf(results[1].Ray.TMax, 1))
	require.True(t, results[2].Found)
	require.InDelta(t, 1.0, results[2].Sphere.R2, 1e-12)
	require.Equal(t, 2, results[2].Closest.PrimitiveIndex)

	// Caller tasks are not modified
	require.Equal(t, 7, tasks[0].ID)
	require.True(t, math.IsInf(tasks[0].Ray.TMax, 1))
}

func TestRunBatch_Errors(t *testing.T) {
	b, err := baseline.New(scene.CollinearSegments(4, 1, 1), baseline.Config{})
	require.NoError(t, err)

	tasks := []Task{
		RayTask(0, AllHits, core.NewRay(r3.Vector{}, r3.Vector{})),
		{Kind: ClosestPoint, Sphere: core.NewBoundingSphere(r3.Vector{}, math.NaN())},
		{Kind: ClosestHit, Ray: core.NewRay(r3.Vector{}, r3.Vector{X: 1}), StartNode: 3},
		{Kind: Kind(42)},
		RayTask(0, AllHits, core.NewRay(r3.Vector{X: -1}, r3.Vector{X: 1})),
	}
	results, stats := RunBatch(b, tasks, 0)

	require.Equal(t, 4, stats.Errors)
	require.Equal(t, core.ErrTypeInvalidRay, errors.Type(results[0].Error))
	require.Equal(t, core.ErrTypeInvalidSphere, errors.Type(results[1].Error))
	require.Equal(t, core.ErrTypeInvalidStartNode, errors.Type(results[2].Error))
	require.Equal(t, core.ErrTypeInvalidConfig, errors.Type(results[3].Error))
	require.NoError(t, results[4].Error)
	require.Equal(t, 4, results[4].Count)
	require.Equal(t, 4, stats.Hits)
}

func TestRunBatch_Empty(t *testing.T) {
	b, err := baseline.New(nil, baseline.Config{})
	require.NoError(t, err)
	results, stats := RunBatch(b, nil, 2)
	require.Empty(t, results)
	require.Zero(t, stats.Queries)
}

func TestWorkerPool(t *testing.T) {
	b, err := baseline.New(scene.CollinearSegments(3, 1, 1), baseline.Config{Index: 5})
	require.NoError(t, err)

	pool := NewWorkerPool(b, 3, 1)
	require.Equal(t, 3, pool.GetNumWorkers())
	pool.Start()

	go func() {
		for i := 0; i < 10; i++ {
			pool.SubmitTask(Task{
				ID:             i,
				Kind:           AllHits,
				Ray:            core.NewRay(r3.Vector{X: -1}, r3.Vector{X: 1}),
				AggregateIndex: 5,
			})
		}
		pool.Stop()
	}()

	seen := map[int]bool{}
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		require.NoError(t, result.Error)
		require.Equal(t, 3, result.Count)
		require.Equal(t, 5, result.Hits[0].AggregateIndex)
		seen[result.TaskID] = true
	}
	require.Len(t, seen, 10)
}
