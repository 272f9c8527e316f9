package queue

import "sync"

// FIFO is an unbounded first-in first-out buffer for admin messages.
//
// Any number of producers (poll workers, the lifecycle manager) may enqueue
// concurrently; Enqueue never blocks and never fails. The admin loop drains
// at most one message per tick, so the buffer absorbs bursts without applying
// back-pressure to the workers that report through it.
type FIFO struct {
	mu    sync.Mutex
	items []Message
}

func NewFIFO() *FIFO {
	return &FIFO{}
}

// Enqueue appends msg. Arrival order is preserved.
func (q *FIFO) Enqueue(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, msg)
}

// TryDequeue removes and returns the oldest message without blocking.
// It returns (Message{}, false) when the buffer is empty.
func (q *FIFO) TryDequeue() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Len reports the number of messages waiting.
// Used by the admin queue-depth gauge.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
