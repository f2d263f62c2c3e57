package scheduler

// ReadyQueue is the FIFO of process ids waiting for a core.
// Insertion order is the only dispatch tie-break.
type ReadyQueue struct {
	ids []int
}

// Enqueue appends id to the back of the queue.
func (q *ReadyQueue) Enqueue(id int) {
	q.ids = append(q.ids, id)
}

// Dequeue pops the front of the queue.
func (q *ReadyQueue) Dequeue() (int, bool) {
	if len(q.ids) == 0 {
		return 0, false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// Len returns the number of queued processes.
func (q *ReadyQueue) Len() int {
	return len(q.ids)
}

// IDs returns a copy of the queue contents, front first.
func (q *ReadyQueue) IDs() []int {
	out := make([]int, len(q.ids))
	copy(out, q.ids)
	return out
}

// Contains reports whether id is queued.
func (q *ReadyQueue) Contains(id int) bool {
	for _, v := range q.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Clear empties the queue.
func (q *ReadyQueue) Clear() {
	q.ids = nil
}
