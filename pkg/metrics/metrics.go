package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded by the interception runtime.
const (
	OutcomeIntercepted = "intercepted"
	OutcomePassthrough = "passthrough"
	OutcomeBypassed    = "bypassed"
	OutcomeRejected    = "rejected"
	OutcomeControl     = "control"
)

// Registry holds every mock server metric in its own prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Outcomes        *prometheus.CounterVec

	MockEnabled  prometheus.Gauge
	Records      *prometheus.GaugeVec
	StoreResets  *prometheus.CounterVec
	StreamClient prometheus.Gauge
	TaskRuns     *prometheus.CounterVec
}

// New returns a Registry backed by a fresh prometheus registry.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	factory := promauto.With(r.reg)

	r.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "nspass_mock_requests_total",
		Help: "Requests handled by the mock server",
	}, []string{"method", "route", "status"})

	r.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nspass_mock_request_duration_seconds",
		Help:    "Duration of handled requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.Outcomes = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "nspass_mock_outcomes_total",
		Help: "Interception decisions by outcome",
	}, []string{"outcome"})

	r.MockEnabled = factory.NewGauge(prometheus.GaugeOpts{
		Name: "nspass_mock_enabled",
		Help: "1 while interception is enabled",
	})

	r.Records = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nspass_mock_records",
		Help: "Records currently held per fixture resource",
	}, []string{"resource"})

	r.StoreResets = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "nspass_mock_store_resets_total",
		Help: "Fixture resets per resource",
	}, []string{"resource"})

	r.StreamClient = factory.NewGauge(prometheus.GaugeOpts{
		Name: "nspass_mock_stream_clients",
		Help: "Connected system-info websocket clients",
	})

	r.TaskRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "nspass_mock_task_runs_total",
		Help: "Background task executions",
	}, []string{"task"})

	return r
}

// SetEnabled records the interception toggle.
func (r *Registry) SetEnabled(on bool) {
	if on {
		r.MockEnabled.Set(1)
		return
	}
	r.MockEnabled.Set(0)
}

// SetRecords publishes per-resource record counts.
func (r *Registry) SetRecords(counts map[string]int) {
	for name, n := range counts {
		r.Records.WithLabelValues(name).Set(float64(n))
	}
}

// Handler serves r in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
