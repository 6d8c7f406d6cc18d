package query

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/geometry"
)

// Stats summarizes a batch of queries
type Stats struct {
	Queries         int           `json:"queries"`
	Found           int           `json:"found"`
	Hits            int           `json:"hits"`
	Errors          int           `json:"errors"`
	NodesVisited    int           `json:"nodes_visited"`
	AvgNodesVisited float64       `json:"avg_nodes_visited"`
	MaxNodesVisited int           `json:"max_nodes_visited"`
	Duration        time.Duration `json:"duration"`
}

// Add accumulates one result
func (s *Stats) Add(r Result) {
	s.Queries++
	if r.Error != nil {
		s.Errors++
		return
	}
	if r.Found {
		s.Found++
	}
	s.Hits += r.Count
	s.NodesVisited += r.NodesVisited
	s.MaxNodesVisited = max(s.MaxNodesVisited, r.NodesVisited)
}

// RunBatch runs every task against agg on numWorkers goroutines and returns
// the results in task order. Task IDs are replaced by their position.
func RunBatch(agg geometry.Aggregate, tasks []Task, numWorkers int) ([]Result, Stats) {
	start := time.Now()
	results := make([]Result, len(tasks))
	var stats Stats
	if len(tasks) == 0 {
		return results, stats
	}

	pool := NewWorkerPool(agg, numWorkers, len(tasks))
	pool.Start()
	for i, task := range tasks {
		task.ID = i
		pool.SubmitTask(task)
	}
	pool.Stop()

	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		results[result.TaskID] = result
		stats.Add(result)
	}

	if stats.Queries > stats.Errors {
		stats.AvgNodesVisited = float64(stats.NodesVisited) / float64(stats.Queries-stats.Errors)
	}
	stats.Duration = time.Since(start)

	logs.WithTag("queries", stats.Queries).
		WithTag("workers", pool.GetNumWorkers()).
		WithTag("errors", stats.Errors).
		WithTag("avg_nodes_visited", stats.AvgNodesVisited).
		WithTag("duration", stats.Duration.String()).
		Debug("query batch done")

	return results, stats
}
