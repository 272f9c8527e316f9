package worker

import (
	"context"
	"sync"
)

// Pool manages the lifecycle of all pollers. Every poller runs on its own
// schedule; the pool only starts, cancels, and joins them.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewPool(workers []*Worker) *Pool {
	return &Pool{workers: workers}
}

// Start launches all pollers as goroutines.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Stop cancels every poller and blocks until all have returned. In-flight
// polls finish first; only the sleep between polls is cut short.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Pool) Size() int {
	return len(p.workers)
}
