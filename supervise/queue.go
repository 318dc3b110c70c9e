package supervise

import "sync"

// lineQueue is an unbounded FIFO between the pipe reader and the lines
// channel. The producer never blocks, so a consumer that reads slowly
// cannot stall the pipe or delay exit detection.
type lineQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []Line
	finished bool
}

func newLineQueue() *lineQueue {
	q := &lineQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *lineQueue) push(line Line) {
	q.mu.Lock()
	q.items = append(q.items, line)
	q.mu.Unlock()
	q.cond.Signal()
}

// finish marks the producer side done. pop drains remaining items and
// then reports exhaustion.
func (q *lineQueue) finish() {
	q.mu.Lock()
	q.finished = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// pop blocks until an item is available or the queue is finished and
// empty, in which case ok is false.
func (q *lineQueue) pop() (line Line, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.finished {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Line{}, false
	}
	line = q.items[0]
	q.items = q.items[1:]
	return line, true
}
