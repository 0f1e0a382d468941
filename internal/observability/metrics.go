package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics of the load workflow.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Orchestration metrics
	Manifests       *prometheus.CounterVec
	ManifestEntries prometheus.Counter
	LoadOutcomes    *prometheus.CounterVec

	// Ledger metrics
	LedgerWrites   *prometheus.CounterVec
	LedgerDuration *prometheus.HistogramVec

	// Redshift Data API metrics
	Submissions        *prometheus.CounterVec
	SubmissionDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with the given namespace and its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Manifests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "manifests_total",
				Help:      "Manifests handled by the load step",
			},
			[]string{"outcome"},
		),
		ManifestEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "manifest_entries_total",
				Help:      "Source files referenced by handled manifests",
			},
		),
		LoadOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_outcomes_total",
				Help:      "Polled load states",
			},
			[]string{"state"},
		),
		LedgerWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_writes_total",
				Help:      "Job ledger status writes",
			},
			[]string{"status", "outcome"},
		),
		LedgerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_write_duration_seconds",
				Help:      "Job ledger write duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statement_submissions_total",
				Help:      "Statements submitted to the Redshift Data API",
			},
			[]string{"mode", "outcome"},
		),
		SubmissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "statement_submission_duration_seconds",
				Help:      "Redshift Data API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		c.Manifests,
		c.ManifestEntries,
		c.LoadOutcomes,
		c.LedgerWrites,
		c.LedgerDuration,
		c.Submissions,
		c.SubmissionDuration,
	)

	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Outcome maps an error to the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
