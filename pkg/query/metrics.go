package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel    = "kind"
	outcomeLabel = "outcome"
)

var (
	queryNodesVisited = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_nodes_visited",
		Help:    "The number of index nodes a query visited.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	}, []string{kindLabel})

	queryCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "query_count",
		Help: "The number of queries run.",
	}, []string{kindLabel, outcomeLabel})
)

func instrumentQuery(r Result) {
	kind := r.Kind.String()
	outcome := "miss"
	switch {
	case r.Error != nil:
		outcome = "error"
	case r.Found:
		outcome = "hit"
	}

	queryCount.With(prometheus.Labels{kindLabel: kind, outcomeLabel: outcome}).Inc()
	if r.Error == nil {
		queryNodesVisited.With(prometheus.Labels{kindLabel: kind}).Observe(float64(r.NodesVisited))
	}
}
