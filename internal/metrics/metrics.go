package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	submissions       prometheus.Counter
	sinkFailures      *prometheus.CounterVec
	sinkDuration      *prometheus.HistogramVec
	transportFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		submissions: f.NewCounter(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Completed feedback interviews handed to dispatch.",
		}),
		sinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_sink_failures_total",
			Help: "Failed sink deliveries.",
		}, []string{"sink"}),
		sinkDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedback_sink_duration_seconds",
			Help:    "Sink call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
		transportFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "feedback_transport_failures_total",
			Help: "Replies that could not be delivered to the user.",
		}),
	}
}

// All methods are safe on a nil *Metrics.

func (m *Metrics) SubmissionCompleted() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

func (m *Metrics) SinkCall(sink string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.sinkDuration.WithLabelValues(sink).Observe(seconds)
	if err != nil {
		m.sinkFailures.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) TransportFailure() {
	if m == nil {
		return
	}
	m.transportFailures.Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
