// Package metrics defines the Prometheus collectors of the roster service.
//
// Collectors register with the default registry on package init; Handler
// exposes them for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes, one per report category.
const (
	OutcomeAccepted      = "accepted"
	OutcomeNumericError  = "numeric_error"
	OutcomeDuplicateID   = "duplicate_id"
	OutcomeInvalid       = "invalid"
	OutcomeSimilarWarned = "similarity_warning"
)

var (
	indexRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roster_index_rebuilds_total",
		Help: "Full rebuilds of the roster index",
	})

	indexRebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_index_rebuild_seconds",
		Help:    "Time to rebuild the roster index",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
	})

	records = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roster_records",
		Help: "Students currently in the roster",
	})

	validatedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_validated_rows_total",
		Help: "Batch rows validated, by outcome",
	}, []string{"outcome"})

	similarityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_similarity_checks_total",
		Help: "Similar-name lookups, by result",
	}, []string{"result"})

	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_operations_total",
		Help: "Roster operations, by operation and status",
	}, []string{"op", "status"})
)

// ObserveRebuild records one full index rebuild over n records.
func ObserveRebuild(took time.Duration, n int) {
	indexRebuilds.Inc()
	indexRebuildDuration.Observe(took.Seconds())
	records.Set(float64(n))
}

// SetRecords sets the roster size gauge.
func SetRecords(n int) {
	records.Set(float64(n))
}

// AddValidated counts n validated rows with the given outcome.
func AddValidated(outcome string, n int) {
	if n > 0 {
		validatedRows.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveSimilarity counts one similar-name lookup.
func ObserveSimilarity(found bool) {
	result := "none"
	if found {
		result = "match"
	}
	similarityChecks.WithLabelValues(result).Inc()
}

// ObserveOp counts one operation, labelled "ok" or "error" by err.
func ObserveOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operations.WithLabelValues(op, status).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
