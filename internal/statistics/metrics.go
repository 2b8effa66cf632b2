package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	RedirectApplied = "applied"
	RedirectFailed  = "failed"
	RedirectSkipped = "skipped"
)

// Metrics holds the prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	classifications *prometheus.CounterVec
	redirects       *prometheus.CounterVec
	settingsReloads prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inxlocker_classifications_total",
				Help: "Total number of classified intents",
			},
			[]string{"site", "decision"},
		),
		redirects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inxlocker_redirects_total",
				Help: "Total number of redirect attempts by result",
			},
			[]string{"result"},
		),
		settingsReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inxlocker_settings_reloads_total",
			Help: "Total number of settings change notifications handled",
		}),
	}

	m.registry.MustRegister(
		m.classifications,
		m.redirects,
		m.settingsReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveClassification(site, decision string) {
	m.classifications.WithLabelValues(site, decision).Inc()
}

func (m *Metrics) ObserveRedirect(result string) {
	m.redirects.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSettingsReload() {
	m.settingsReloads.Inc()
}
