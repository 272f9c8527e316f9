package queue_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/slotwatch/slotwatch/internal/queue"
)

func msg(body string) queue.Message {
	return queue.Message{ID: body, Source: "test", Body: body}
}

func TestFIFO_OrderPreserved(t *testing.T) {
	q := queue.NewFIFO()

	q.Enqueue(msg("first"))
	q.Enqueue(msg("second"))
	q.Enqueue(msg("third"))

	for _, want := range []string{"first", "second", "third"} {
		got, ok := q.TryDequeue()
		if !ok {
			t.Fatalf("expected %q, queue was empty", want)
		}
		if got.Body != want {
			t.Fatalf("expected %q, got %q", want, got.Body)
		}
	}
}

// TestFIFO_TryDequeueEmpty verifies the non-blocking dequeue reports an empty
// buffer instead of waiting for a producer.
func TestFIFO_TryDequeueEmpty(t *testing.T) {
	q := queue.NewFIFO()

	if m, ok := q.TryDequeue(); ok {
		t.Fatalf("expected empty queue, got %+v", m)
	}

	q.Enqueue(msg("only"))
	if _, ok := q.TryDequeue(); !ok {
		t.Fatal("expected the enqueued message")
	}
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("expected queue to be empty again")
	}
}

// TestFIFO_ConcurrentProducers verifies there are no races and no lost
// messages when multiple goroutines enqueue simultaneously, and that each
// producer's own messages come out in the order it sent them.
func TestFIFO_ConcurrentProducers(t *testing.T) {
	q := queue.NewFIFO()

	const producers = 5
	const perProducer = 100

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Enqueue(queue.Message{Source: fmt.Sprintf("p%d", p), Body: fmt.Sprintf("%d", j)})
			}
		}(i)
	}
	wg.Wait()

	if got := q.Len(); got != producers*perProducer {
		t.Fatalf("expected %d messages, got %d", producers*perProducer, got)
	}

	lastPerSource := make(map[string]int)
	for {
		m, ok := q.TryDequeue()
		if !ok {
			break
		}
		var seq int
		if _, err := fmt.Sscanf(m.Body, "%d", &seq); err != nil {
			t.Fatalf("unparsable body %q: %v", m.Body, err)
		}
		if last, seen := lastPerSource[m.Source]; seen && seq != last+1 {
			t.Fatalf("source %s: expected sequence %d, got %d", m.Source, last+1, seq)
		}
		lastPerSource[m.Source] = seq
	}
}

func TestFIFO_Len(t *testing.T) {
	q := queue.NewFIFO()

	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got len=%d", q.Len())
	}

	q.Enqueue(msg("a"))
	q.Enqueue(msg("b"))
	if q.Len() != 2 {
		t.Fatalf("expected len=2, got %d", q.Len())
	}

	q.TryDequeue()
	if q.Len() != 1 {
		t.Fatalf("expected len=1 after dequeue, got %d", q.Len())
	}
}
