// Package metrics exposes league counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "selective_league"

type Metrics struct {
	registry *prometheus.Registry

	matchesDecided     *prometheus.CounterVec
	matchesUndone      *prometheus.CounterVec
	matchesGenerated   *prometheus.CounterVec
	missingPlayers     prometheus.Counter
	rankingComposition *prometheus.HistogramVec
}

// New registers the league collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		matchesDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_decided_total",
			Help:      "Matches decided by an administrator, by selective mode.",
		}, []string{"mode"}),
		matchesUndone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_undone_total",
			Help:      "Match results that were undone, by selective mode.",
		}, []string{"mode"}),
		matchesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_generated_total",
			Help:      "Match shells generated, by selective mode.",
		}, []string{"mode"}),
		missingPlayers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_updates_skipped_total",
			Help:      "Rating updates skipped because a player no longer exists.",
		}),
		rankingComposition: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_composition_seconds",
			Help:      "Time spent loading and ordering the global ranking.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
	}
	reg.MustRegister(
		m.matchesDecided,
		m.matchesUndone,
		m.matchesGenerated,
		m.missingPlayers,
		m.rankingComposition,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Все методы безопасны для nil-получателя, чтобы тесты могли обходиться без метрик.

func (m *Metrics) MatchDecided(mode string) {
	if m != nil {
		m.matchesDecided.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) MatchUndone(mode string) {
	if m != nil {
		m.matchesUndone.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) MatchesGenerated(mode string, n int) {
	if m != nil && n > 0 {
		m.matchesGenerated.WithLabelValues(mode).Add(float64(n))
	}
}

func (m *Metrics) PlayerMissing() {
	if m != nil {
		m.missingPlayers.Inc()
	}
}

func (m *Metrics) ObserveRanking(mode string, started time.Time) {
	if m != nil {
		m.rankingComposition.WithLabelValues(mode).Observe(time.Since(started).Seconds())
	}
}
