// Package metrics defines the Prometheus collectors used by the pipeline
// and exposes an HTTP handler for scraping. A full build runs for hours;
// the scrape endpoint is how its progress is observed from outside.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the builder.
type Metrics struct {
	PagesExtracted   *prometheus.CounterVec
	RecordsSkipped   *prometheus.CounterVec
	ParseFailures    *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	ArticlesInPhase  *prometheus.GaugeVec
	NeighborsWritten prometheus.Counter
	CandidatesPruned prometheus.Histogram
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	m := &Metrics{
		PagesExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikigir_pages_extracted_total",
				Help: "Pages emitted by the XML extractor, by phase.",
			},
			[]string{"phase"},
		),
		RecordsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikigir_records_skipped_total",
				Help: "Per-record parse errors absorbed, by phase.",
			},
			[]string{"phase"},
		),
		ParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikigir_integrity_violations_total",
				Help: "Items dropped for referencing ids missing from a registry, by phase.",
			},
			[]string{"phase"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wikigir_phase_duration_seconds",
				Help:    "Wall time per pipeline phase.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 12),
			},
			[]string{"phase"},
		),
		ArticlesInPhase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wikigir_phase_articles",
				Help: "Articles processed so far in the running phase.",
			},
			[]string{"phase"},
		),
		NeighborsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wikigir_neighbor_records_total",
				Help: "Nearest-neighbor records appended to the output file.",
			},
		),
		CandidatesPruned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wikigir_pruned_candidates",
				Help:    "Candidate set size per source article after pruning.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
	prometheus.MustRegister(
		m.PagesExtracted,
		m.RecordsSkipped,
		m.ParseFailures,
		m.PhaseDuration,
		m.ArticlesInPhase,
		m.NeighborsWritten,
		m.CandidatesPruned,
	)
	return m
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
