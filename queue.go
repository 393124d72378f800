package filesink

import (
	"sync"
)

// recordQueue is a bounded, multi-producer/single-consumer mailbox. Producers
// block while the queue is full (backpressure, never drop); the single
// consumer blocks while it is empty. Closing is permanent: records admitted
// before close are still delivered, new admissions fail with ErrSinkClosed.
//
// The queue is a fixed ring guarded by a mutex and two condition variables,
// giving cooperative blocking without busy-waiting. Wakeup order among
// concurrently blocked producers is unspecified but starvation-free given a
// live consumer.
type recordQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	buf      []Record
	head     int
	count    int
	closed   bool
}

func newRecordQueue(capacity int) *recordQueue {
	q := &recordQueue{
		buf: make([]Record, capacity),
	}

	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)

	return q
}

// enqueue admits a record, blocking while the queue is full. It returns
// ErrSinkClosed once the queue has been closed, including for producers that
// were blocked when close happened.
func (q *recordQueue) enqueue(rec Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == len(q.buf) && !q.closed {
		q.notFull.Wait()
	}

	if q.closed {
		return ErrSinkClosed
	}

	q.buf[(q.head+q.count)%len(q.buf)] = rec
	q.count++

	q.notEmpty.Signal()

	return nil
}

// dequeue removes the oldest record, blocking while the queue is empty and
// open. It returns false only once the queue is closed and fully drained,
// which guarantees delivery of every admitted record.
func (q *recordQueue) dequeue() (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if q.count == 0 {
		return nil, false
	}

	rec := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.count--

	q.notFull.Signal()

	return rec, true
}

// close marks the queue closed. It is idempotent and wakes every blocked
// producer and the consumer.
func (q *recordQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true

	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// depth reports the number of records currently admitted but not consumed.
func (q *recordQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.count
}

// full reports whether the queue is at capacity. The answer is advisory:
// it may be stale by the time the caller acts on it.
func (q *recordQueue) full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.count == len(q.buf)
}
