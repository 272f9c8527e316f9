package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/domain"
	"github.com/slotwatch/slotwatch/internal/notify"
	"github.com/slotwatch/slotwatch/internal/provider"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the worker constructor signature clean.
type MetricHooks struct {
	OnPoll          func(service, outcome string, elapsed time.Duration)
	OnChange        func(service string, kind domain.ChangeKind)
	OnDeliveryError func(service string)
}

// Worker is a single goroutine that polls one availability service on its
// own schedule, compares the result against the last snapshot, and notifies
// the service's subscription when the free-slot set changed. Poll and
// delivery failures are reported to the admin channel and never stop the
// loop.
type Worker struct {
	title    string
	interval uint
	prov     provider.Provider
	sub      notify.Sink
	admin    *notify.AdminSender
	logger   *zap.Logger
	hooks    MetricHooks

	// prev is only touched from Run's goroutine.
	prev domain.Snapshot

	tick time.Duration
}

// New constructs a worker. Hook fields are optional (nil = no-op).
func New(
	title string,
	interval uint,
	prov provider.Provider,
	sub notify.Sink,
	admin *notify.AdminSender,
	logger *zap.Logger,
	hooks MetricHooks,
) *Worker {
	if hooks.OnPoll == nil {
		hooks.OnPoll = func(string, string, time.Duration) {}
	}
	if hooks.OnChange == nil {
		hooks.OnChange = func(string, domain.ChangeKind) {}
	}
	if hooks.OnDeliveryError == nil {
		hooks.OnDeliveryError = func(string) {}
	}
	return &Worker{
		title: title, interval: interval, prov: prov, sub: sub,
		admin: admin, logger: logger, hooks: hooks,
		prev: domain.Snapshot{},
		tick: time.Second,
	}
}

// Run blocks until ctx is cancelled, polling once per interval. Cancellation
// is observed between sleep ticks; a poll or delivery already underway is
// allowed to finish.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("poller started", zap.Uint("interval_seconds", w.interval))

	// In-flight requests must not be torn down mid-send on shutdown.
	ioCtx := context.WithoutCancel(ctx)

	for {
		w.pollOnce(ioCtx)
		if !w.sleep(ctx) {
			w.logger.Info("poller stopped")
			return
		}
	}
}

func (w *Worker) pollOnce(ctx context.Context) {
	start := time.Now()
	log := w.logger.With(zap.String("cycle_id", uuid.NewString()))

	log.Debug("polling provider")
	next, err := w.prov.Fetch(ctx)
	elapsed := time.Since(start)
	if err != nil {
		w.hooks.OnPoll(w.title, "error", elapsed)
		log.Error("poll failed", zap.Error(err))
		w.admin.Send(w.title, err.Error())
		return
	}
	w.hooks.OnPoll(w.title, "ok", elapsed)

	change := domain.Detect(w.prev, next)
	// The snapshot advances even when delivery fails below, so a broken
	// sink cannot make the same change fire on every later cycle.
	w.prev = next

	if change.Kind == domain.ChangeNone {
		log.Debug("no change", zap.Int("free", len(next)))
		return
	}

	w.hooks.OnChange(w.title, change.Kind)
	log.Info("availability changed",
		zap.String("kind", string(change.Kind)),
		zap.Int("added", len(change.Added)),
		zap.Int("removed", len(change.Removed)),
		zap.Int("free", len(change.Free)),
	)

	report := change.Report(w.prov.Source())
	var sendErr error
	if change.Kind == domain.ChangeUrgent {
		sendErr = w.sub.SendUrgent(ctx, w.title, report)
	} else {
		sendErr = w.sub.SendNormal(ctx, w.title, report)
	}
	if sendErr != nil {
		w.hooks.OnDeliveryError(w.title)
		log.Warn("notification delivery failed", zap.Error(sendErr))
		w.admin.Send(w.title, sendErr.Error())
	}
}

// sleep waits out the poll interval one tick at a time and reports whether
// the worker should keep running.
func (w *Worker) sleep(ctx context.Context) bool {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for i := uint(0); i < w.interval; i++ {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
