package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for admission outcomes.
const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "rejected"
	OutcomeDegraded = "degraded"
)

// Metrics holds counters for the admission subsystem.
type Metrics struct {
	admissionsTotal *prometheus.CounterVec
	heartbeatsTotal prometheus.Counter
	liveSessions    prometheus.Gauge
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		admissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "decisions_total",
			Help:      "Total number of admission decisions.",
		}, []string{"outcome", "reason"}),
		heartbeatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "admission",
			Name:      "heartbeats_total",
			Help:      "Total number of session heartbeats received.",
		}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "admission",
			Name:      "live_sessions",
			Help:      "Live session count as of the most recent pool scan.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.admissionsTotal,
			m.heartbeatsTotal,
			m.liveSessions,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// RecordDecision counts one admission decision. reason is empty for
// plain admits.
func (m *Metrics) RecordDecision(outcome, reason string) {
	if m == nil {
		return
	}
	m.admissionsTotal.WithLabelValues(outcome, reason).Inc()
}

func (m *Metrics) RecordHeartbeat() {
	if m == nil {
		return
	}
	m.heartbeatsTotal.Inc()
}

// SetLiveSessions publishes the live count computed by a pool scan.
func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.liveSessions.Set(float64(n))
}
