// Package metrics exposes the service's Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Manager owns the registry and the counters the resolver stack reports to.
type Manager struct {
	registry *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	resolutions      *prometheus.CounterVec
	cacheEntries     prometheus.Gauge
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mona_cache_lookups_total",
			Help: "Memoized lookups by function and outcome (hit, negative_hit, miss)",
		}, []string{"function", "outcome"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mona_upstream_requests_total",
			Help: "Outbound requests by upstream and outcome",
		}, []string{"upstream", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mona_resolutions_total",
			Help: "Artwork resolutions by kind and source; source is none when nothing was found",
		}, []string{"kind", "source"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mona_cache_entries",
			Help: "Entries held by the resolution cache after the last prune",
		}),
	}

	registry.MustRegister(m.cacheLookups, m.upstreamRequests, m.resolutions, m.cacheEntries)

	return m
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// ObserveCacheLookup counts one memoizer lookup.
func (m *Manager) ObserveCacheLookup(function, outcome string) {
	m.cacheLookups.WithLabelValues(function, outcome).Inc()
}

// ObserveUpstream counts one outbound request.
func (m *Manager) ObserveUpstream(upstream, outcome string) {
	m.upstreamRequests.WithLabelValues(upstream, outcome).Inc()
}

// ObserveResolution counts one completed resolution.
func (m *Manager) ObserveResolution(kind, source string) {
	if source == "" {
		source = "none"
	}
	m.resolutions.WithLabelValues(kind, source).Inc()
}

// SetCacheEntries records the cache size.
func (m *Manager) SetCacheEntries(n int) {
	m.cacheEntries.Set(float64(n))
}
