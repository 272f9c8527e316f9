package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/queue"
)

// AdminTitle is the fixed title of every message relayed by the admin
// channel, regardless of which component enqueued it.
const AdminTitle = "Slotwatch Admin"

// AdminSender is the producer side of the admin channel. Enqueueing never
// blocks, so pollers can report failures without waiting on delivery.
type AdminSender struct {
	q *queue.FIFO
}

func NewAdminSender(q *queue.FIFO) *AdminSender {
	return &AdminSender{q: q}
}

func (s *AdminSender) Send(source, body string) {
	s.q.Enqueue(queue.Message{
		ID:         uuid.NewString(),
		Source:     source,
		Body:       body,
		EnqueuedAt: time.Now().UTC(),
	})
}

// Admin is the consumer side of the admin channel. It relays at most one
// queued message per tick to its subscription and drains whatever is left
// when the context is cancelled, so a shutdown notice enqueued right before
// cancellation still goes out.
type Admin struct {
	sub     Sink
	q       *queue.FIFO
	logger  *zap.Logger
	onRelay func(err error)
	tick    time.Duration
}

func NewAdmin(sub Sink, q *queue.FIFO, logger *zap.Logger, onRelay func(err error)) *Admin {
	if onRelay == nil {
		onRelay = func(error) {}
	}
	return &Admin{sub: sub, q: q, logger: logger, onRelay: onRelay, tick: time.Second}
}

func (a *Admin) Run(ctx context.Context) {
	a.logger.Info("admin channel started")

	// Relays must finish even when the run context is already cancelled.
	ioCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.relayOne(ioCtx)
		case <-ctx.Done():
			a.drain(ioCtx)
			a.logger.Info("admin channel stopped")
			return
		}
	}
}

func (a *Admin) relayOne(ctx context.Context) {
	msg, ok := a.q.TryDequeue()
	if !ok {
		return
	}
	a.relay(ctx, msg)
}

func (a *Admin) drain(ctx context.Context) {
	for {
		msg, ok := a.q.TryDequeue()
		if !ok {
			return
		}
		a.relay(ctx, msg)
	}
}

func (a *Admin) relay(ctx context.Context, msg queue.Message) {
	log := a.logger.With(
		zap.String("message_id", msg.ID),
		zap.String("source", msg.Source),
	)

	err := a.sub.SendNormal(ctx, AdminTitle, fmt.Sprintf("%s: %s", msg.Source, msg.Body))
	a.onRelay(err)
	if err != nil {
		log.Warn("admin relay failed", zap.Error(err))
		return
	}
	log.Debug("admin message relayed", zap.Duration("queued_for", time.Since(msg.EnqueuedAt)))
}
