package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/baseline"
	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/df07/go-geomquery/pkg/mbvh"
	"github.com/df07/go-geomquery/pkg/query"
	"github.com/df07/go-geomquery/pkg/scene"
	"github.com/golang/geo/r3"
	"github.com/segmentio/encoding/json"
)

// Keeps the config keys readable when the binary is obfuscated
var _ = reflect.TypeOf(config{})

type config struct {
	Scene      string `cli:""        env:"GEOMQUERY_SCENE"       help:"Scene to index (segments|triangles|grid|spheres|collinear)."`
	Primitives int    `cli:""        env:"GEOMQUERY_PRIMITIVES"  help:"Number of primitives to generate."`
	Seed       int    `cli:""        env:"GEOMQUERY_SEED"        help:"Seed of the scene and query generators."`
	Heuristic  string `cli:""        env:"GEOMQUERY_HEURISTIC"   help:"Split cost heuristic (longest-axis-center|surface-area|overlap-surface-area|volume|overlap-volume)."`
	LeafSize   int    `cli:""        env:"GEOMQUERY_LEAF_SIZE"   help:"Maximum references per binary leaf."`
	Buckets    int    `cli:",hidden" env:"GEOMQUERY_BUCKETS"     help:"Centroid buckets per axis for object splits."`
	Bins       int    `cli:",hidden" env:"GEOMQUERY_BINS"        help:"Bins per axis for spatial splits."`
	SplitAlpha string `cli:",hidden" env:"GEOMQUERY_SPLIT_ALPHA" help:"Child overlap, relative to the root, above which spatial splits are tried."`
	Branching  int    `cli:""        env:"GEOMQUERY_BRANCHING"   help:"Wide tree branching factor (2|4|8|16)."`
	Queries    int    `cli:""        env:"GEOMQUERY_QUERIES"     help:"Number of queries of each kind."`
	Workers    int    `cli:""        env:"GEOMQUERY_WORKERS"     help:"Query workers, 0 uses every CPU."`
	LogLevel   string `cli:""        env:"GEOMQUERY_LOG_LEVEL"   help:"Log level (debug|info|warning|error)."`
	JSON       bool   `cli:""        env:"GEOMQUERY_JSON"        help:"Print the report as JSON."`
	ListScenes bool   `cli:""        env:"-"                     help:"List the built-in scenes."`
	Help       bool   `cli:""        env:"-"                     help:"Show help."`
}

func defaultConfig() config {
	bvhConfig := bvh.DefaultConfig()
	return config{
		Scene:      "segments",
		Primitives: 10000,
		Seed:       1,
		Heuristic:  bvhConfig.CostHeuristic.String(),
		LeafSize:   bvhConfig.LeafSize,
		Buckets:    bvhConfig.NBuckets,
		Bins:       bvhConfig.NBins,
		SplitAlpha: strconv.FormatFloat(bvhConfig.SplitAlpha, 'g', -1, 64),
		Branching:  mbvh.DefaultConfig().BranchingFactor,
		Queries:    1000,
		LogLevel:   logs.InfoLevel.String(),
	}
}

func main() {
	conf := defaultConfig()

	cli.Register().
		Help("Builds the spatial indices over a generated scene, runs a query batch against each one and checks them against a linear scan.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	if conf.ListScenes {
		if err := writeScenes(os.Stdout, scene.ListScenes(), conf.JSON); err != nil {
			logs.Fatal(err)
		}
		return
	}

	rep, err := run(conf)
	if err != nil {
		logs.Fatal(err)
	}
	if err := writeReport(os.Stdout, rep, conf.JSON); err != nil {
		logs.Fatal(err)
	}

	if mismatches := rep.mismatches(); mismatches > 0 {
		logs.WithTag("mismatches", mismatches).
			Warn("query results differ from the linear scan")
		os.Exit(1)
	}
}

// bvhConfig converts the command line options into a binary index config
func (c config) bvhConfig() (bvh.Config, error) {
	heuristic, err := bvh.ParseCostHeuristic(c.Heuristic)
	if err != nil {
		return bvh.Config{}, err
	}
	splitAlpha, err := strconv.ParseFloat(c.SplitAlpha, 64)
	if err != nil {
		return bvh.Config{}, errors.New("invalid split alpha").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("split_alpha", c.SplitAlpha).
			Wrap(err)
	}

	config := bvh.DefaultConfig()
	config.CostHeuristic = heuristic
	config.SplitAlpha = splitAlpha
	config.LeafSize = c.LeafSize
	config.NBuckets = c.Buckets
	config.NBins = c.Bins
	config.PrintStats = true
	return config, nil
}

type backend struct {
	name      string
	aggregate geometry.Aggregate
	buildTime time.Duration
}

// run builds every index over the configured scene, runs the same query batch
// against each of them and compares the answers with the linear scan
func run(conf config) (report, error) {
	bvhConfig, err := conf.bvhConfig()
	if err != nil {
		return report{}, err
	}
	if conf.Queries < 0 {
		return report{}, errors.New("query count must not be negative").
			WithType(core.ErrTypeInvalidConfig).
			WithTag("queries", conf.Queries)
	}

	sc, err := scene.New(conf.Scene, conf.Primitives, int64(conf.Seed))
	if err != nil {
		return report{}, errors.New("generating scene failed").Wrap(err)
	}

	start := time.Now()
	reference, err := baseline.New(sc.Primitives, baseline.Config{})
	if err != nil {
		return report{}, errors.New("building linear scan failed").Wrap(err)
	}
	backends := []backend{{name: "baseline", aggregate: reference, buildTime: time.Since(start)}}

	start = time.Now()
	tree, err := bvh.New(sc.Primitives, bvhConfig)
	if err != nil {
		return report{}, errors.New("building binary index failed").Wrap(err)
	}
	backends = append(backends, backend{name: "sbvh", aggregate: tree, buildTime: time.Since(start)})

	start = time.Now()
	wide, err := mbvh.New(tree, mbvh.Config{BranchingFactor: conf.Branching, PrintStats: true})
	if err != nil {
		return report{}, errors.New("collapsing wide index failed").Wrap(err)
	}
	backends = append(backends, backend{name: "mbvh", aggregate: wide, buildTime: time.Since(start)})

	tasks := queryTasks(sc, conf.Queries, int64(conf.Seed))

	rep := report{
		Scene:      sc.Name,
		Primitives: len(sc.Primitives),
		Heuristic:  bvhConfig.CostHeuristic.String(),
		Sbvh:       tree.Stats(),
		Mbvh:       wide.Stats(),
	}

	var expected []query.Result
	for i, b := range backends {
		results, stats := query.RunBatch(b.aggregate, tasks, conf.Workers)
		entry := backendReport{
			Name:      b.name,
			BuildTime: b.buildTime,
			Queries:   stats,
		}
		if i == 0 {
			expected = results
		} else {
			entry.Mismatches = compareResults(expected, results)
		}
		rep.Backends = append(rep.Backends, entry)
	}

	return rep, nil
}

// queryTasks returns n queries of every kind over the scene
func queryTasks(sc *scene.Scene, n int, seed int64) []query.Task {
	rng := rand.New(rand.NewSource(seed + 1))
	tasks := make([]query.Task, 0, 4*n)
	for _, r := range sc.Rays(rng, n) {
		tasks = append(tasks,
			query.RayTask(0, query.ClosestHit, r),
			query.RayTask(0, query.Occlusion, r),
			query.RayTask(0, query.AllHits, r),
		)
	}
	for _, s := range sc.Spheres(rng, n, math.Inf(1)) {
		tasks = append(tasks, query.ClosestPointTask(0, s, r3.Vector{}))
	}
	return tasks
}

// compareResults counts the results that disagree with the expected ones.
// Distances must agree to a relative tolerance; primitives at equal distance
// may differ.
func compareResults(expected, actual []query.Result) int {
	mismatches := 0
	for i := range expected {
		if err := compareResult(expected[i], actual[i]); err != nil {
			logs.WithTag("task", i).
				WithTag("kind", expected[i].Kind.String()).
				Debug(err)
			mismatches++
		}
	}
	return mismatches
}

func compareResult(want, got query.Result) error {
	if want.Error != nil || got.Error != nil {
		if (want.Error == nil) != (got.Error == nil) {
			return errors.New("error mismatch").
				WithTag("want", fmt.Sprint(want.Error)).
				WithTag("got", fmt.Sprint(got.Error))
		}
		return nil
	}
	if want.Found != got.Found || want.Count != got.Count {
		return errors.New("hit count mismatch").
			WithTag("want", want.Count).
			WithTag("got", got.Count)
	}

	switch want.Kind {
	case query.ClosestHit, query.AllHits:
		for j := range want.Hits {
			if !sameDistance(want.Hits[j].Distance, got.Hits[j].Distance) {
				return errors.New("hit distance mismatch").
					WithTag("hit", j).
					WithTag("want", want.Hits[j].Distance).
					WithTag("got", got.Hits[j].Distance)
			}
		}
	case query.ClosestPoint:
		if want.Found && !sameDistance(want.Closest.Distance, got.Closest.Distance) {
			return errors.New("closest point distance mismatch").
				WithTag("want", want.Closest.Distance).
				WithTag("got", got.Closest.Distance)
		}
	}
	return nil
}

func sameDistance(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
