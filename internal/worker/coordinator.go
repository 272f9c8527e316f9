package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/notify"
)

// Coordinator owns the shutdown ordering: pollers stop and join first, then
// the termination notice is enqueued, and only then does the admin channel
// drain and stop. That guarantees the notice is relayed before the process
// exits.
type Coordinator struct {
	pool   *Pool
	admin  *notify.Admin
	sender *notify.AdminSender
	logger *zap.Logger

	cancelAdmin context.CancelFunc
	adminDone   chan struct{}
	once        sync.Once
}

func NewCoordinator(pool *Pool, admin *notify.Admin, sender *notify.AdminSender, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		pool:      pool,
		admin:     admin,
		sender:    sender,
		logger:    logger,
		adminDone: make(chan struct{}),
	}
}

// Start launches the admin channel and every poller. Stop the coordinator
// through Shutdown, not by cancelling ctx, or the ordering guarantee is
// lost.
func (c *Coordinator) Start(ctx context.Context) {
	adminCtx, cancel := context.WithCancel(ctx)
	c.cancelAdmin = cancel

	go func() {
		defer close(c.adminDone)
		c.admin.Run(adminCtx)
	}()

	c.pool.Start(ctx)
}

// Shutdown is idempotent; calls after the first return immediately.
func (c *Coordinator) Shutdown() {
	c.once.Do(func() {
		c.logger.Info("stopping pollers", zap.Int("count", c.pool.Size()))
		c.pool.Stop()
		c.logger.Info("all pollers stopped")

		c.sender.Send("app", fmt.Sprintf("slotwatch terminated, %d pollers stopped", c.pool.Size()))

		if c.cancelAdmin == nil {
			return
		}
		c.cancelAdmin()
		<-c.adminDone
	})
}
