package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatTurnsTotal        *prometheus.CounterVec
	routerDecisionsTotal  *prometheus.CounterVec
	faqSearchAttempts     *prometheus.HistogramVec
	pipelineStageDuration *prometheus.HistogramVec
	productResults        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlf",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dlf",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlf",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed chat turns by result source.",
		},
		[]string{"service", "source"},
	)
	routerDecisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlf",
			Subsystem: "router",
			Name:      "decisions_total",
			Help:      "Total router classifications by decision kind.",
		},
		[]string{"service", "kind"},
	)
	faqSearchAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Subsystem: "router",
			Name:      "faq_search_attempts",
			Help:      "Distribution of rephrase-and-search attempts per FAQ answer.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	pipelineStageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Product search stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	productResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlf",
			Subsystem: "pipeline",
			Name:      "product_results",
			Help:      "Distribution of products returned per delegated search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatTurnsTotal,
		routerDecisionsTotal,
		faqSearchAttempts,
		pipelineStageDuration,
		productResults,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		chatTurnsTotal:        chatTurnsTotal,
		routerDecisionsTotal:  routerDecisionsTotal,
		faqSearchAttempts:     faqSearchAttempts,
		pipelineStageDuration: pipelineStageDuration,
		productResults:        productResults,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/sessions/"):
		return "/v1/sessions/{session_id}/messages"
	case strings.HasPrefix(path, "/v1/catalog/"):
		return "/v1/catalog/{job_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChatTurn(service, source string) {
	if source == "" {
		source = "unknown"
	}
	m.chatTurnsTotal.WithLabelValues(service, source).Inc()
}

func (m *HTTPServerMetrics) RecordRouterDecision(service, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.routerDecisionsTotal.WithLabelValues(service, kind).Inc()
}

func (m *HTTPServerMetrics) RecordFAQSearchAttempts(service string, attempts int) {
	if attempts <= 0 {
		return
	}
	m.faqSearchAttempts.WithLabelValues(service).Observe(float64(attempts))
}

func (m *HTTPServerMetrics) RecordPipelineStage(service, stage string, duration time.Duration) {
	if stage == "" {
		stage = "unknown"
	}
	m.pipelineStageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordProductResults(service string, count int) {
	m.productResults.WithLabelValues(service).Observe(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
