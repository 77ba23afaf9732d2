package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the service's Prometheus metrics.
type Metrics struct {
	// MessageCounter tracks Telegram messages.
	// Labels: direction (inbound|outbound), kind (command|text|callback)
	MessageCounter *prometheus.CounterVec

	// AgentRequestDuration measures agent API call latency in seconds.
	// Labels: operation (create_session|list_sessions|delete_session|run|artifacts)
	AgentRequestDuration *prometheus.HistogramVec

	// AgentRequestCounter counts agent API calls.
	// Labels: operation, status (success|error)
	AgentRequestCounter *prometheus.CounterVec

	// GenerationDuration measures model generation latency in seconds.
	// Labels: provider
	GenerationDuration *prometheus.HistogramVec

	// CacheCounter counts knowledge cache lookups.
	// Labels: outcome (hit|miss)
	CacheCounter *prometheus.CounterVec

	// ErrorCounter tracks errors by component and code.
	// Labels: component (telegram|agent|generation|sessions), code
	ErrorCounter *prometheus.CounterVec

	// ActiveSessions gauges currently bound chat sessions.
	ActiveSessions prometheus.Gauge
}

// NewMetrics creates and registers all metrics with reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessageCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acharya_messages_total",
				Help: "Total Telegram messages by direction and kind",
			},
			[]string{"direction", "kind"},
		),
		AgentRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acharya_agent_request_duration_seconds",
				Help:    "Duration of agent API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"operation"},
		),
		AgentRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acharya_agent_requests_total",
				Help: "Total agent API requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acharya_generation_duration_seconds",
				Help:    "Duration of model generation calls in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		CacheCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acharya_cache_lookups_total",
				Help: "Knowledge cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		ErrorCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acharya_errors_total",
				Help: "Errors by component and code",
			},
			[]string{"component", "code"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "acharya_active_sessions",
				Help: "Currently bound chat sessions",
			},
		),
	}
}

// ObserveAgentRequest records one agent API call.
func (m *Metrics) ObserveAgentRequest(operation string, start time.Time, err error) {
	m.AgentRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	m.AgentRequestCounter.WithLabelValues(operation, status).Inc()
}

// MetricsServer serves the /metrics endpoint.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer builds an HTTP server exposing reg at /metrics on addr.
func NewMetricsServer(addr string, reg *prometheus.Registry, logger *slog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown. It blocks, so run it in a goroutine.
func (s *MetricsServer) Start() {
	s.logger.Info("metrics listener started", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("metrics listener failed", "error", err)
	}
}

// Shutdown stops the listener gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
