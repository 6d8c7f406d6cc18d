package query

import (
	"runtime"
	"sync"

	"github.com/df07/go-geomquery/pkg/geometry"
)

// WorkerPool runs query tasks in parallel against one aggregate. Aggregates
// are read only during queries, so workers share it without locking.
type WorkerPool struct {
	taskQueue   chan Task
	resultQueue chan Result
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual query tasks
type Worker struct {
	ID          int
	aggregate   geometry.Aggregate
	taskQueue   chan Task
	resultQueue chan Result
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Up to queueSize tasks and results are buffered.
func NewWorkerPool(agg geometry.Aggregate, numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize < 0 {
		queueSize = 0
	}

	wp := &WorkerPool{
		taskQueue:   make(chan Task, queueSize),
		resultQueue: make(chan Result, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			aggregate:   agg,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for queued tasks to finish and shuts down all workers. Results
// not yet read stay available through GetResult.
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a task, blocking while the queue is full
func (wp *WorkerPool) SubmitTask(task Task) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed result. It reports false once the pool is
// stopped and drained.
func (wp *WorkerPool) GetResult() (Result, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		result := task.run(w.aggregate)
		instrumentQuery(result)
		w.resultQueue <- result
	}
}
