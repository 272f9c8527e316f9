package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/slotwatch/slotwatch/internal/config"
)

// ErrSinkPanic reports that a sink implementation panicked mid-send. The
// handle recovers the panic so one misbehaving sink cannot take down the
// poller that triggered it, and the guarding mutex is always released.
var ErrSinkPanic = errors.New("sink panicked during send")

// handle wraps a sink with the mutex that serializes sends to it. Several
// subscriptions may share one handle; whichever poller dispatches first
// holds the sink until its send returns.
type handle struct {
	name string
	mu   sync.Mutex
	sink Sink
}

func (h *handle) dispatch(ctx context.Context, title, message string, urgent bool) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSinkPanic, r)
		}
	}()

	if urgent {
		return h.sink.SendUrgent(ctx, title, message)
	}
	return h.sink.SendNormal(ctx, title, message)
}

// Registry holds every configured sink under its config name. Subscriptions
// resolved from the same registry share handles, so two pollers notifying
// the same sink never interleave their sends.
type Registry struct {
	handles map[string]*handle
}

func NewRegistry(sinks map[string]config.Sink) (*Registry, error) {
	handles := make(map[string]*handle, len(sinks))
	for name, cfg := range sinks {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", name, err)
		}
		handles[name] = &handle{name: name, sink: sink}
	}
	return &Registry{handles: handles}, nil
}

func newSink(cfg config.Sink) (Sink, error) {
	switch cfg.Provider {
	case config.SinkGotify:
		return NewGotify(*cfg.Gotify), nil
	case config.SinkEmail:
		return NewEmail(*cfg.Email)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", cfg.Provider)
	}
}

// Resolve maps sink names to a subscription preserving the given order.
func (r *Registry) Resolve(names []string) (Subscription, error) {
	sub := make(Subscription, 0, len(names))
	for _, name := range names {
		h, ok := r.handles[name]
		if !ok {
			return nil, fmt.Errorf("unknown sink %q", name)
		}
		sub = append(sub, h)
	}
	return sub, nil
}

// Subscription fans a message out to its sinks one after another, in
// resolution order. The first failing sink aborts the fan-out and its error
// is returned; sinks after it are not attempted.
type Subscription []*handle

func (s Subscription) SendNormal(ctx context.Context, title, message string) error {
	return s.send(ctx, title, message, false)
}

func (s Subscription) SendUrgent(ctx context.Context, title, message string) error {
	return s.send(ctx, title, message, true)
}

func (s Subscription) send(ctx context.Context, title, message string, urgent bool) error {
	for _, h := range s {
		if err := h.dispatch(ctx, title, message, urgent); err != nil {
			return fmt.Errorf("sink %s: %w", h.name, err)
		}
	}
	return nil
}

// compile-time check that Subscription implements Sink
var _ Sink = (Subscription)(nil)
