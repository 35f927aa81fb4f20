package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	factory               promauto.Factory
	registrations         *prometheus.CounterVec
	identityVerifications *prometheus.CounterVec
	logins                *prometheus.CounterVec
}

// New registers every collector with reg; pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		factory: factory,
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_registrations_total",
			Help: "Registration attempts by variant and result",
		}, []string{"variant", "result"}),
		identityVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_identity_verifications_total",
			Help: "Identity verification attempts by result",
		}, []string{"result"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRegistration(variant, result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(variant, result).Inc()
}

func (m *Metrics) ObserveIdentityVerification(result string) {
	if m == nil {
		return
	}
	m.identityVerifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// TrackActiveSessions exposes count as a gauge sampled on every scrape.
func (m *Metrics) TrackActiveSessions(count func() int) {
	if m == nil {
		return
	}
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "lms_active_sessions",
		Help: "Sessions currently held by the session registry",
	}, func() float64 {
		return float64(count())
	})
}
