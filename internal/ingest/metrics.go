// File path: internal/ingest/metrics.go
package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchdb_uploads_total",
		Help: "Experiment uploads by outcome.",
	}, []string{"outcome"})

	deletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchdb_deletes_total",
		Help: "Experiment deletions by outcome.",
	}, []string{"outcome"})

	skippedRegionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchdb_parse_skipped_regions_total",
		Help: "Result rows skipped because their region label was unknown.",
	})

	mirrorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchdb_mirror_failures_total",
		Help: "Mirror writes that failed after a database commit.",
	})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "benchdb_upload_duration_seconds",
		Help:    "End-to-end upload latency.",
		Buckets: prometheus.DefBuckets,
	})
)
