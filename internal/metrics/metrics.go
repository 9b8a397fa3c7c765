package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billbot"

// Metrics groups the orchestrator collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	turns          *prometheus.CounterVec
	dispatches     *prometheus.CounterVec
	decodeFailures prometheus.Counter
	modelRequests  *prometheus.CounterVec
	modelLatency   *prometheus.HistogramVec
	sessions       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "User turns completed, by path (direct or function).",
		}, []string{"path"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_dispatches_total",
			Help:      "Function calls dispatched, by function and outcome.",
		}, []string{"function", "outcome"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_argument_decode_failures_total",
			Help:      "Function-call arguments that were not a JSON object.",
		}),
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Requests to the model service, by phase and result.",
		}, []string{"phase", "result"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Model service round-trip latency, by phase.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"phase"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Sessions with a transcript in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.turns, m.dispatches, m.decodeFailures, m.modelRequests, m.modelLatency, m.sessions)
	}
	return m
}

func (m *Metrics) Turn(path string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(path).Inc()
}

func (m *Metrics) Dispatch(function string, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.dispatches.WithLabelValues(function, outcome).Inc()
}

func (m *Metrics) DecodeFailure() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

func (m *Metrics) ModelRequest(phase string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.modelRequests.WithLabelValues(phase, result).Inc()
	m.modelLatency.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) Sessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
