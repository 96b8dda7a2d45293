package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formfill/pkg/client"
	"github.com/goliatone/go-formfill/pkg/submission"
)

// Metrics provides observability for form submissions, backend calls, and
// HTTP traffic. Each instance owns a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Submission outcomes by final state
	Submissions *prometheus.CounterVec

	// Submits blocked by validation
	ValidationFailures prometheus.Counter

	// Backend call latencies by action and result
	RemoteCalls *prometheus.HistogramVec

	// Served requests by route pattern and status
	Requests *prometheus.CounterVec
}

var (
	_ submission.Observer = (*Metrics)(nil)
	_ client.CallObserver = (*Metrics)(nil)
)

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formfill_submissions_total",
			Help: "Total submission attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "failed"

		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "formfill_validation_failures_total",
			Help: "Total submits blocked by validation errors",
		}),

		RemoteCalls: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formfill_remote_call_duration_seconds",
			Help:    "Duration of backend calls by action and result",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"action", "result"}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formfill_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "status"}),
	}
}

// ValidationFailed records a submit blocked by validation.
func (m *Metrics) ValidationFailed(string) {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

// Submitted records the terminal state of a submission attempt.
func (m *Metrics) Submitted(_ string, state submission.State) {
	if m != nil {
		m.Submissions.WithLabelValues(state.String()).Inc()
	}
}

// ObserveCall records one backend call.
func (m *Metrics) ObserveCall(action string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RemoteCalls.WithLabelValues(action, result).Observe(d.Seconds())
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, status int) {
	if m != nil {
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
