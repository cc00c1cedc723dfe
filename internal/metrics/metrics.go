// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the interview lifecycle, including the degraded-mode side channel of the
// question and scoring stages.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Components reported through Fallback.
const (
	ComponentQuestions = "questions"
	ComponentScoring   = "scoring"
)

// Metrics holds the collectors registered for one process. Each instance
// owns its registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	fallbacks    *prometheus.CounterVec
	sessions     *prometheus.CounterVec
}

// New registers the interview collectors plus the Go and process collectors
// on a fresh registry.
func New(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interview_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_fallback_total",
			Help: "Number of times a remote stage degraded to its offline fallback.",
		}, []string{"component"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_sessions_total",
			Help: "Interview lifecycle events.",
		}, []string{"event"}),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.fallbacks,
		m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Fallback returns an observer for a stage's degraded mode. Each call
// increments interview_fallback_total and logs the reason at warn level.
func (m *Metrics) Fallback(component string) func(reason error) {
	counter := m.fallbacks.WithLabelValues(component)
	return func(reason error) {
		counter.Inc()
		m.logger.Warn("using offline fallback",
			zap.String("component", component),
			zap.Error(reason))
	}
}

// Lifecycle counts an interview lifecycle event.
func (m *Metrics) Lifecycle(event string) {
	m.sessions.WithLabelValues(event).Inc()
}

// Middleware records request counts and latency. route names the pattern
// the request was matched against; when it returns "" the raw path is used.
func (m *Metrics) Middleware(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		label := r.URL.Path
		if route != nil {
			if name := route(r); name != "" {
				label = name
			}
		}
		m.httpRequests.WithLabelValues(r.Method, label, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps server-sent event streams working behind the middleware.
func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
