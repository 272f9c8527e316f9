package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/api/handler"
	apimw "github.com/slotwatch/slotwatch/internal/api/middleware"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	services []handler.ServiceStatus,
	queueLen func() int,
	reg prometheus.Gatherer,
	version string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer) // recover panics, return 500
	r.Use(chimw.RealIP)    // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestID) // X-Request-Id inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	hh := handler.NewHealthHandler(version)
	sh := handler.NewStatusHandler(services, queueLen)

	// --- routes ---
	r.Get("/healthz", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", sh.GetStatus)
	})

	return r
}
