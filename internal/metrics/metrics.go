// Package metrics provides the Prometheus collectors for section scanning.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scans by the host surface that triggered them.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sectioncount_scans_total",
			Help: "Total number of document scans",
		},
		[]string{"source"},
	)

	// ScanDuration measures a single full-document scan.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sectioncount_scan_duration_seconds",
			Help:    "Time taken to scan a document",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	// AnnotationsEmitted counts section annotations produced by scans.
	AnnotationsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sectioncount_annotations_emitted_total",
			Help: "Total number of section annotations emitted",
		},
	)

	// OpenDocuments tracks the sessions currently followed by a tracker.
	OpenDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sectioncount_open_documents",
			Help: "Number of open documents being tracked",
		},
	)

	// SettingsChanges counts toggle changes by key.
	SettingsChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sectioncount_settings_changes_total",
			Help: "Total number of settings toggle changes",
		},
		[]string{"key"},
	)
)

// RecordScan records one scan from source.
func RecordScan(source string, d time.Duration, annotations int) {
	ScansTotal.WithLabelValues(source).Inc()
	ScanDuration.Observe(d.Seconds())
	AnnotationsEmitted.Add(float64(annotations))
}
