package mbvh

// queueEntry is a pending wide node or leaf group of a closest point search
type queueEntry struct {
	child     int32
	count     int32
	distance  float64 // Squared distance from the query center to the box
	alignment float64 // Box center projected on the boundary hint
}

// nodeQueue is a min-heap of entries by distance. Entries at equal distance
// pop in decreasing alignment. It implements heap.Interface.
type nodeQueue []queueEntry

func (q nodeQueue) Len() int {
	return len(q)
}

func (q nodeQueue) Less(i, j int) bool {
	if q[i].distance != q[j].distance {
		return q[i].distance < q[j].distance
	}
	return q[i].alignment > q[j].alignment
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *nodeQueue) Push(x any) {
	*q = append(*q, x.(queueEntry))
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}
