package mbvh

import (
	"strconv"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	branchingFactorLabel = "branching_factor"
	errorTypeLabel       = "type"
)

var (
	mbvhCollapseLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "mbvh_collapse_latency",
		Help: "The time to collapse a binary index into a wide index.",
	}, []string{branchingFactorLabel})

	mbvhNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mbvh_nodes",
		Help: "The number of wide nodes built.",
	}, []string{branchingFactorLabel})

	mbvhCollapseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mbvh_collapse_failures",
		Help: "The number of collapses that failed.",
	}, []string{errorTypeLabel})
)

func instrumentCollapse(branchingFactor int, start time.Time, stats Stats) {
	labels := prometheus.Labels{branchingFactorLabel: strconv.Itoa(branchingFactor)}
	mbvhCollapseLatency.With(labels).Observe(time.Since(start).Seconds())
	mbvhNodes.With(labels).Add(float64(stats.Nodes))
}

func instrumentFailure(err error) {
	mbvhCollapseFailures.With(prometheus.Labels{errorTypeLabel: errors.Type(err)}).Inc()
}
