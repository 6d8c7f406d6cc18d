package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/df07/go-geomquery/pkg/query"
	"github.com/df07/go-geomquery/pkg/scene"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func smallConfig(sceneID string) config {
	conf := defaultConfig()
	conf.Scene = sceneID
	conf.Primitives = 200
	conf.Queries = 40
	conf.Workers = 2
	return conf
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		scene     string
		heuristic string
		branching int
	}{
		{"segments", "segments", "surface-area", 4},
		{"triangles", "triangles", "overlap-surface-area", 8},
		{"grid", "grid", "volume", 16},
		{"collinear", "collinear", "longest-axis-center", 2},
		{"spheres", "spheres", "surface-area", 8},
		{"segments with spatial splits", "segments", "overlap-volume", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := smallConfig(tt.scene)
			conf.Heuristic = tt.heuristic
			conf.Branching = tt.branching

			rep, err := run(conf)
			require.NoError(t, err)
			require.Equal(t, tt.scene, rep.Scene)
			require.Equal(t, tt.heuristic, rep.Heuristic)
			require.Equal(t, tt.branching, rep.Mbvh.BranchingFactor)
			require.Len(t, rep.Backends, 3)
			require.Zero(t, rep.mismatches())

			for _, b := range rep.Backends {
				require.Equal(t, 4*conf.Queries, b.Queries.Queries, b.Name)
				require.Zero(t, b.Queries.Errors, b.Name)
			}

			// The linear scan visits every primitive unless an occlusion query
			// stops early
			require.Equal(t, rep.Primitives, rep.Backends[0].Queries.MaxNodesVisited)
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config)
	}{
		{"unknown scene", func(c *config) { c.Scene = "teapot" }},
		{"unknown heuristic", func(c *config) { c.Heuristic = "median" }},
		{"bad split alpha", func(c *config) { c.SplitAlpha = "a lot" }},
		{"zero leaf size", func(c *config) { c.LeafSize = 0 }},
		{"one bucket", func(c *config) { c.Buckets = 1 }},
		{"unsupported branching factor", func(c *config) { c.Branching = 5 }},
		{"negative primitives", func(c *config) { c.Primitives = -1 }},
		{"negative queries", func(c *config) { c.Queries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := smallConfig("segments")
			tt.modify(&conf)
			_, err := run(conf)
			require.Error(t, err)
		})
	}
}

func TestCompareResult(t *testing.T) {
	conf := smallConfig("triangles")
	rep, err := run(conf)
	require.NoError(t, err)
	require.Zero(t, rep.mismatches())

	want := query.Result{Kind: query.ClosestPoint, Found: true, Count: 1}
	want.Closest.Distance = 1
	got := want
	require.NoError(t, compareResult(want, got))

	got.Closest.Distance = 1 + 1e-12
	require.NoError(t, compareResult(want, got))

	got.Closest.Distance = 1.1
	require.Error(t, compareResult(want, got))

	got = want
	got.Found, got.Count = false, 0
	require.Error(t, compareResult(want, got))
}

func TestWriteReport(t *testing.T) {
	rep, err := run(smallConfig("segments"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep, false))
	out := buf.String()
	for _, s := range []string{"scene segments", "baseline", "sbvh", "mbvh", "Lane utilization", "TOTAL"} {
		require.True(t, strings.Contains(out, s), "missing %q in\n%s", s, out)
	}

	buf.Reset()
	require.NoError(t, writeReport(&buf, rep, true))
	var decoded report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, rep.Scene, decoded.Scene)
	require.Equal(t, rep.Sbvh.Nodes, decoded.Sbvh.Nodes)
	require.Equal(t, rep.Mbvh.LeafRecords, decoded.Mbvh.LeafRecords)
	require.Len(t, decoded.Backends, 3)
}

func TestWriteScenes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScenes(&buf, scene.ListScenes(), false))
	for _, info := range scene.ListScenes() {
		require.True(t, strings.Contains(buf.String(), info.ID))
	}

	buf.Reset()
	require.NoError(t, writeScenes(&buf, scene.ListScenes(), true))
	var decoded []scene.SceneInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, scene.ListScenes(), decoded)
}
