package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	TenantResolutions *prometheus.CounterVec
	Logins            *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	Provisioned       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		TenantResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "tenant_resolutions_total",
			Help:      "Tenant resolution attempts by outcome.",
		}, []string{"outcome"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "logins_total",
			Help:      "Token issuance attempts by identity class and outcome.",
		}, []string{"class", "outcome"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "token_verifications_total",
			Help:      "Bearer token verifications by identity class and outcome.",
		}, []string{"class", "outcome"}),
		Provisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "tenant_provisioning_total",
			Help:      "Tenant provisioning attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TenantResolutions,
		m.Logins,
		m.Verifications,
		m.Provisioned,
	)
	return m
}
