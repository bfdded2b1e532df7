// Package iometrics implements telemetry.Recorder with Prometheus
// counters.
package iometrics

import (
	"github.com/aurora-skin/skinsafety/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skinsafety"

// Metrics holds the counters of the KB loader and the rule engine.
type Metrics struct {
	reg prometheus.Gatherer

	loaderErrors    *prometheus.CounterVec
	ruleMatches     *prometheus.CounterVec
	legacyFallbacks *prometheus.CounterVec
}

var _ telemetry.Recorder = (*Metrics)(nil)

// New registers counters in a fresh registry. Separate registries keep
// tests and several loaders independent of the global default one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		loaderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kb",
			Name:      "loader_errors_total",
			Help:      "Failed or degraded knowledge base loads by reason",
		}, []string{"reason"}),
		ruleMatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "rule_matches_total",
			Help:      "Matched knowledge base rules by source, rule and level",
		}, []string{"source", "rule_id", "level"}),
		legacyFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "legacy_fallback_total",
			Help:      "Decisions that relied on the static rule set by reason",
		}, []string{"reason"}),
	}
}

// LoaderError implements telemetry.Recorder.
func (m *Metrics) LoaderError(reason string) {
	m.loaderErrors.WithLabelValues(reason).Inc()
}

// RuleMatch implements telemetry.Recorder.
func (m *Metrics) RuleMatch(source, ruleID, level string) {
	m.ruleMatches.WithLabelValues(source, ruleID, level).Inc()
}

// LegacyFallback implements telemetry.Recorder.
func (m *Metrics) LegacyFallback(reason string) {
	m.legacyFallbacks.WithLabelValues(reason).Inc()
}

// Gatherer exposes the registry for scraping or dumping.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// WriteFile dumps current values in the text exposition format, the
// way node_exporter's textfile collector expects them.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return WriteMetricsError(path, err)
	}
	return nil
}
