package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mbarroso/escala-engine/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API and worker flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	batchesSubmittedTotal prometheus.Counter
	batchesFinishedTotal  *prometheus.CounterVec
	schedulesCreatedTotal prometheus.Counter
	schedulesFailedTotal  prometheus.Counter
	batchDuration         prometheus.Histogram
	workerInflight        prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "escala_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "escala_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		batchesSubmittedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "escala_engine",
				Name:      "batches_submitted_total",
				Help:      "Total number of bulk schedule batches accepted for processing.",
			},
		),
		batchesFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "escala_engine",
				Name:      "batches_finished_total",
				Help:      "Total number of batches that reached a terminal state.",
			},
			[]string{"status"},
		),
		schedulesCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "escala_engine",
				Name:      "schedules_created_total",
				Help:      "Total number of schedules created by batch jobs.",
			},
		),
		schedulesFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "escala_engine",
				Name:      "schedules_failed_total",
				Help:      "Total number of schedules that failed to generate.",
			},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "escala_engine",
				Name:      "batch_duration_seconds",
				Help:      "Wall-clock duration of a batch job run in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
			},
		),
		workerInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "escala_engine",
				Name:      "worker_inflight",
				Help:      "Current number of batch jobs being processed.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.batchesSubmittedTotal,
		m.batchesFinishedTotal,
		m.schedulesCreatedTotal,
		m.schedulesFailedTotal,
		m.batchDuration,
		m.workerInflight,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncBatchSubmitted() {
	if m == nil {
		return
	}
	m.batchesSubmittedTotal.Inc()
}

func (m *Metrics) IncBatchFinished(status domain.BatchStatus) {
	if m == nil {
		return
	}
	m.batchesFinishedTotal.WithLabelValues(strings.ToLower(status.String())).Inc()
}

func (m *Metrics) IncScheduleCreated() {
	if m == nil {
		return
	}
	m.schedulesCreatedTotal.Inc()
}

func (m *Metrics) IncScheduleFailed() {
	if m == nil {
		return
	}
	m.schedulesFailedTotal.Inc()
}

func (m *Metrics) ObserveBatchDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.batchDuration.Observe(seconds)
}

func (m *Metrics) IncWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Inc()
}

func (m *Metrics) DecWorkerInFlight() {
	if m == nil {
		return
	}
	m.workerInflight.Dec()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
