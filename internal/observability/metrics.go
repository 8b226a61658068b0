// Package observability exposes the engine's Prometheus instruments.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics captures billing engine health signals.
type Metrics struct {
	documentsIssued   *prometheus.CounterVec
	issuanceDenied    *prometheus.CounterVec
	issuanceConflicts prometheus.Counter
	renderFailures    prometheus.Counter
	documentsSent     *prometheus.CounterVec
	signups           prometheus.Counter
	verifications     *prometheus.CounterVec
}

func New() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		documentsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atomo_documents_issued_total",
			Help: "Documents issued, by entitlement state at authorization time.",
		}, []string{"entitlement"}),
		issuanceDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atomo_issuance_denied_total",
			Help: "Issuance attempts denied by the entitlement gate.",
		}, []string{"reason"}),
		issuanceConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "atomo_issuance_conflicts_total",
			Help: "Issuance transactions that lost a sequence or credit race.",
		}),
		renderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "atomo_render_failures_total",
			Help: "Document renders that failed after the record was committed.",
		}),
		documentsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atomo_documents_sent_total",
			Help: "Documents handed to the email transport, by outcome.",
		}, []string{"outcome"}),
		signups: factory.NewCounter(prometheus.CounterOpts{
			Name: "atomo_signups_total",
			Help: "Completed account signups.",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atomo_identity_verifications_total",
			Help: "Identity verification attempts, by verdict.",
		}, []string{"verdict"}),
	}
}

func (m *Metrics) DocumentIssued(entitlement string) {
	m.documentsIssued.WithLabelValues(entitlement).Inc()
}

func (m *Metrics) IssuanceDenied(reason string) {
	m.issuanceDenied.WithLabelValues(reason).Inc()
}

func (m *Metrics) IssuanceConflict() {
	m.issuanceConflicts.Inc()
}

func (m *Metrics) RenderFailure() {
	m.renderFailures.Inc()
}

func (m *Metrics) DocumentSent(delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.documentsSent.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Signup() {
	m.signups.Inc()
}

func (m *Metrics) Verification(matched bool) {
	verdict := "matched"
	if !matched {
		verdict = "rejected"
	}
	m.verifications.WithLabelValues(verdict).Inc()
}
