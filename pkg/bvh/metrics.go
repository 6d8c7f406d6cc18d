package bvh

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	heuristicLabel = "heuristic"
)

var (
	bvhBuildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "bvh_build_latency",
		Help: "The time to build a binary index.",
	}, []string{heuristicLabel})

	bvhNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_nodes",
		Help: "The number of binary index nodes built.",
	}, []string{heuristicLabel})

	bvhDuplicatedReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_duplicated_references",
		Help: "The number of references duplicated by spatial splits.",
	}, []string{heuristicLabel})
)

func instrumentBuild(h CostHeuristic, start time.Time, stats Stats) {
	labels := prometheus.Labels{heuristicLabel: h.String()}
	bvhBuildLatency.With(labels).Observe(time.Since(start).Seconds())
	bvhNodes.With(labels).Add(float64(stats.Nodes))
	bvhDuplicatedReferences.With(labels).Add(float64(stats.DuplicatedReferences))
}
