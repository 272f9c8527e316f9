package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/queue"
)

func adminFixture(sink Sink) (*Admin, *queue.FIFO) {
	q := queue.NewFIFO()
	return NewAdmin(sink, q, zap.NewNop(), nil), q
}

func TestAdminSenderStampsMessages(t *testing.T) {
	q := queue.NewFIFO()
	sender := NewAdminSender(q)

	before := time.Now().UTC()
	sender.Send("dentist", "transport: connection refused")

	msg, ok := q.TryDequeue()
	if !ok {
		t.Fatal("expected message in queue")
	}
	if msg.ID == "" {
		t.Fatal("expected message ID to be set")
	}
	if msg.Source != "dentist" {
		t.Fatalf("expected source dentist, got %q", msg.Source)
	}
	if msg.Body != "transport: connection refused" {
		t.Fatalf("unexpected body %q", msg.Body)
	}
	if msg.EnqueuedAt.Before(before) {
		t.Fatalf("expected enqueue time at or after %v, got %v", before, msg.EnqueuedAt)
	}
}

func TestAdminRelaysOnePerTick(t *testing.T) {
	log := &callLog{}
	a, q := adminFixture(&scriptedSink{name: "ops", log: log})
	for i := 1; i <= 3; i++ {
		q.Enqueue(queue.Message{ID: fmt.Sprintf("%d", i), Source: "app", Body: "msg"})
	}

	a.relayOne(context.Background())
	if got := len(log.snapshot()); got != 1 {
		t.Fatalf("expected one relay per tick, got %d", got)
	}
	a.relayOne(context.Background())
	if got := len(log.snapshot()); got != 2 {
		t.Fatalf("expected two relays after two ticks, got %d", got)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one message left queued, got %d", q.Len())
	}
}

func TestAdminDrainsQueueOnShutdown(t *testing.T) {
	rec := &recordingSink{}
	a, q := adminFixture(rec)
	a.tick = time.Hour

	sender := NewAdminSender(q)
	sender.Send("dentist", "poll failed")
	sender.Send("app", "slotwatch terminated, 3 pollers stopped")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("admin did not stop after cancellation")
	}

	if len(rec.messages) != 2 {
		t.Fatalf("expected both queued messages relayed on shutdown, got %d", len(rec.messages))
	}
	if rec.messages[0] != "dentist: poll failed" {
		t.Fatalf("unexpected first message %q", rec.messages[0])
	}
	if rec.messages[1] != "app: slotwatch terminated, 3 pollers stopped" {
		t.Fatalf("unexpected second message %q", rec.messages[1])
	}
	if rec.titles[0] != AdminTitle || rec.titles[1] != AdminTitle {
		t.Fatalf("expected fixed admin title, got %v", rec.titles)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestAdminRunTickLoop(t *testing.T) {
	rec := &recordingSink{}
	a, q := adminFixture(rec)
	a.tick = 5 * time.Millisecond

	for i := 1; i <= 3; i++ {
		q.Enqueue(queue.Message{ID: fmt.Sprintf("%d", i), Source: "app", Body: fmt.Sprintf("msg %d", i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for q.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("queue not drained by tick loop")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("admin did not stop after cancellation")
	}

	if len(rec.messages) != 3 {
		t.Fatalf("expected three relays, got %d", len(rec.messages))
	}
	for i, want := range []string{"app: msg 1", "app: msg 2", "app: msg 3"} {
		if rec.messages[i] != want {
			t.Fatalf("message %d: expected %q, got %q", i, want, rec.messages[i])
		}
	}
}

func TestAdminDeliveryFailureDropsMessage(t *testing.T) {
	errOffline := errors.New("gotify offline")
	log := &callLog{}
	var relayed []error
	q := queue.NewFIFO()
	sink := &scriptedSink{name: "ops", log: log, err: errOffline}
	a := NewAdmin(sink, q, zap.NewNop(), func(err error) { relayed = append(relayed, err) })

	q.Enqueue(queue.Message{ID: "1", Source: "app", Body: "msg"})
	a.relayOne(context.Background())

	if q.Len() != 0 {
		t.Fatalf("expected failed message to be dropped, queue has %d", q.Len())
	}
	if len(relayed) != 1 || !errors.Is(relayed[0], errOffline) {
		t.Fatalf("expected relay hook to observe the failure, got %v", relayed)
	}
}

// recordingSink captures titles and bodies in invocation order.
type recordingSink struct {
	titles   []string
	messages []string
}

func (r *recordingSink) SendNormal(ctx context.Context, title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSink) SendUrgent(ctx context.Context, title, message string) error {
	return r.SendNormal(ctx, title, message)
}
