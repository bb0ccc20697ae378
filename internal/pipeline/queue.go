package pipeline

import (
	"sync"

	"github.com/texasoct/idod/internal/models"
)

// Queue is the bounded in-memory RawRecord buffer described for the
// concurrency model (§5): capture drivers never block on a slow pipeline,
// so a full queue drops its oldest record to admit the newest one rather
// than rejecting the write or blocking the producer.
type Queue struct {
	mu       sync.Mutex
	capacity int
	buf      []models.RawRecord
	dropped  int64
}

// NewQueue builds a Queue holding at most capacity records (falling back to
// a sane default when capacity <= 0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Queue{capacity: capacity, buf: make([]models.RawRecord, 0, capacity)}
}

// Push appends r, dropping the oldest buffered record first if the queue is
// already at capacity. Push satisfies perception.Sink's signature, so a
// Queue can be wired in directly as the Coordinator's sink.
func (q *Queue) Push(r models.RawRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) >= q.capacity {
		q.buf = q.buf[1:]
		q.dropped++
	}
	q.buf = append(q.buf, r)
}

// Drain removes and returns every record currently buffered, oldest first.
func (q *Queue) Drain() []models.RawRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return nil
	}
	out := q.buf
	q.buf = make([]models.RawRecord, 0, q.capacity)
	return out
}

// Len reports the number of records currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Dropped reports the total number of records ever dropped for overflow.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
