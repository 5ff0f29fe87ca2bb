// CLAUDE:SUMMARY Prometheus collectors for resolution telemetry — outcome counters keyed by entry, degradation detection, latency histogram.
package resolve

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazyhaar/cartwatch/selreg"
)

// Metrics bundles Prometheus collectors for the resolver. The interesting
// signal is outcome=fallback climbing while outcome=primary falls: the site's
// markup drifted and the selector set needs a new version before the whole
// chain dies.
type Metrics struct {
	Registry            *prometheus.Registry
	ResolutionsTotal    *prometheus.CounterVec
	AmbiguousSkipsTotal *prometheus.CounterVec
	ResolutionDuration  prometheus.Histogram
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartwatch_resolutions_total",
			Help: "Selector resolutions by entry and outcome (primary, fallback, exhausted, cancelled).",
		},
		[]string{"entry", "outcome"},
	)
	ambiguous := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartwatch_ambiguous_skips_total",
			Help: "Strategies skipped because they matched more than one element.",
		},
		[]string{"entry", "kind"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cartwatch_resolution_duration_seconds",
			Help:    "Wall time of full fallback-chain resolutions.",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(resolutions, ambiguous, duration)

	return &Metrics{
		Registry:            registry,
		ResolutionsTotal:    resolutions,
		AmbiguousSkipsTotal: ambiguous,
		ResolutionDuration:  duration,
	}
}

// observeResolution records one complete resolution walk. Nil-safe so the
// resolver works without telemetry wired. Ambiguous skips are derived from
// the attempt log rather than the Resolution, so an exhausted chain still
// counts its skipped strategies.
func (m *Metrics) observeResolution(entry *selreg.Entry, res *Resolution, attempts []Attempt, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "exhausted"
	switch {
	case err != nil:
		outcome = "cancelled"
	case res != nil && res.FallbackRank == 0:
		outcome = "primary"
	case res != nil:
		outcome = "fallback"
	}
	m.ResolutionsTotal.WithLabelValues(entry.Name, outcome).Inc()
	m.ResolutionDuration.Observe(d.Seconds())

	for _, a := range attempts {
		if a.Matches > 1 {
			m.AmbiguousSkipsTotal.WithLabelValues(entry.Name, string(a.Strategy.Kind)).Inc()
		}
	}
}
