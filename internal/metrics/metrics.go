package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slotwatch/slotwatch/internal/domain"
	"github.com/slotwatch/slotwatch/internal/worker"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	Polls           *prometheus.CounterVec
	PollDuration    *prometheus.HistogramVec
	Changes         *prometheus.CounterVec
	DeliveryErrors  *prometheus.CounterVec
	AdminRelays     *prometheus.CounterVec
	AdminQueueDepth prometheus.GaugeFunc
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct. queueLen feeds the admin queue
// depth gauge on every scrape.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer, queueLen func() int) *Metrics {
	m := &Metrics{
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "polls_total",
			Help: "Total number of poll cycles by outcome.",
		}, []string{"service", "outcome"}),

		PollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Wall time of a successful poll cycle against the provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),

		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "changes_total",
			Help: "Total number of detected availability changes by kind.",
		}, []string{"service", "kind"}),

		DeliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_errors_total",
			Help: "Total number of failed notification fan-outs.",
		}, []string{"service"}),

		AdminRelays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_relays_total",
			Help: "Total number of admin messages relayed by outcome.",
		}, []string{"outcome"}),

		AdminQueueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "admin_queue_depth",
			Help: "Current number of messages waiting in the admin queue.",
		}, func() float64 { return float64(queueLen()) }),
	}

	reg.MustRegister(
		m.Polls,
		m.PollDuration,
		m.Changes,
		m.DeliveryErrors,
		m.AdminRelays,
		m.AdminQueueDepth,
	)

	return m
}

// WorkerHooks returns the metric callback functions expected by
// worker.MetricHooks. Centralises the prometheus observation calls so
// worker.go stays import-free.
func (m *Metrics) WorkerHooks() worker.MetricHooks {
	return worker.MetricHooks{
		OnPoll: func(service, outcome string, elapsed time.Duration) {
			m.Polls.WithLabelValues(service, outcome).Inc()
			if outcome == "ok" {
				m.PollDuration.WithLabelValues(service).Observe(elapsed.Seconds())
			}
		},
		OnChange: func(service string, kind domain.ChangeKind) {
			m.Changes.WithLabelValues(service, string(kind)).Inc()
		},
		OnDeliveryError: func(service string) {
			m.DeliveryErrors.WithLabelValues(service).Inc()
		},
	}
}

// AdminRelayHook returns the callback recording admin relay outcomes.
func (m *Metrics) AdminRelayHook() func(error) {
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.AdminRelays.WithLabelValues(outcome).Inc()
	}
}
