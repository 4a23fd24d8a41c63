package saturation

import "sync"

// readyQueue is the shared FIFO of contexts waiting for a worker.
//
// pending counts contexts that are queued or being processed. A run is
// quiescent once pending drops to zero: no context holds unprocessed
// conclusions and no worker can produce new ones.
type readyQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []*Context
	head    int
	pending int
	gen     uint64
	stopped bool
}

func newReadyQueue() *readyQueue {
	q := &readyQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push schedules a context that just moved to Queued.
func (q *readyQueue) push(c *Context) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.pending++
	q.mu.Unlock()
	q.cond.Signal()
}

// pushBack returns a context that was taken but not completed.
func (q *readyQueue) pushBack(c *Context) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

// take blocks until a context is available. It returns nil once the queue is
// quiescent or the current run has been stopped.
func (q *readyQueue) take() *Context {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) && q.pending > 0 && !q.stopped {
		q.cond.Wait()
	}
	if q.stopped || q.head == len(q.items) {
		return nil
	}
	c := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return c
}

// done marks a taken context as completed.
func (q *readyQueue) done() {
	q.mu.Lock()
	q.pending--
	quiescent := q.pending == 0
	q.mu.Unlock()
	if quiescent {
		q.cond.Broadcast()
	}
}

// start opens a new run and returns its generation.
func (q *readyQueue) start() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gen++
	q.stopped = false
	return q.gen
}

// stop wakes all waiting workers of run gen and makes take return nil.
// Stopping an older generation is a no-op.
func (q *readyQueue) stop(gen uint64) {
	q.mu.Lock()
	if q.gen == gen {
		q.stopped = true
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

// reset drops every queued context. The generation counter keeps growing, so
// a stop issued for an earlier run never affects a later one.
func (q *readyQueue) reset() {
	q.mu.Lock()
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	q.pending = 0
	q.stopped = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// backlog returns the number of contexts waiting for a worker.
func (q *readyQueue) backlog() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// quiescent reports whether no context is queued or being processed.
func (q *readyQueue) quiescent() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending == 0
}
