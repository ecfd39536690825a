package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeGuardFailure = "guard_failure"
	OutcomeError        = "error"
)

// Metrics provides observability for contract calls on the ledger.
type Metrics struct {
	// Calls by contract kind, method and outcome
	Calls *prometheus.CounterVec

	// Guard failures by contract kind, method and guard
	GuardFailures *prometheus.CounterVec

	// Call latency including the state commit
	CallDuration *prometheus.HistogramVec

	// Deployments by contract kind
	Deployments *prometheus.CounterVec

	// Event publications that failed after commit
	EventPublishFailures prometheus.Counter
}

// New registers the ledger metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chainid_ledger_calls_total",
			Help: "Total contract calls by kind, method and outcome",
		}, []string{"kind", "method", "outcome"}),

		GuardFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chainid_ledger_guard_failures_total",
			Help: "Contract calls aborted by a guard, by kind, method and guard",
		}, []string{"kind", "method", "guard"}), // guard: "unauthorized", "contract_paused", "invalid_level", "invalid_amount"

		CallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chainid_ledger_call_duration_seconds",
			Help:    "Duration of contract calls including the state commit",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind", "method"}),

		Deployments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chainid_ledger_deployments_total",
			Help: "Total contract deployments by kind",
		}, []string{"kind"}),

		EventPublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "chainid_ledger_event_publish_failures_total",
			Help: "Committed calls whose events could not be handed to the event sink",
		}),
	}
}

// ObserveCall records one finished call. guard is empty unless a guard rejected it.
func (m *Metrics) ObserveCall(kind, method, outcome, guard string, d time.Duration) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(kind, method, outcome).Inc()
	m.CallDuration.WithLabelValues(kind, method).Observe(d.Seconds())
	if guard != "" {
		m.GuardFailures.WithLabelValues(kind, method, guard).Inc()
	}
}

func (m *Metrics) IncrementDeployments(kind string) {
	if m != nil {
		m.Deployments.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementEventPublishFailures() {
	if m != nil {
		m.EventPublishFailures.Inc()
	}
}
