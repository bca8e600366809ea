// Package metrics provides Prometheus metrics for the courtside pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingest metrics
	rowsIngested  prometheus.Counter
	rowsMalformed prometheus.Counter

	// Aggregation metrics
	priorGroups      prometheus.Gauge
	emptyGroups      prometheus.Counter
	subThresholdRows prometheus.Counter
	missingPriors    prometheus.Counter

	// Posterior metrics
	recordsComputed prometheus.Counter
	numericRetries  prometheus.Counter
	numericFailures prometheus.Counter

	// Run-level metrics
	workerCount   prometheus.Gauge
	recordTotal   prometheus.Gauge
	lastRunUnix   prometheus.Gauge
	stageDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry backing the global manager, for exposition.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_ingested_total",
		Help:      "Total number of outcome rows read from the source",
	})

	m.rowsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_malformed_total",
		Help:      "Total number of malformed outcome rows skipped in tolerant mode",
	})

	m.priorGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prior_groups",
		Help:      "Number of (position, zone) prior groups built in the last run",
	})

	m.emptyGroups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "empty_groups_dropped_total",
		Help:      "Total number of zero-attempt prior groups dropped",
	})

	m.subThresholdRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sub_threshold_rows_dropped_total",
		Help:      "Total number of player-zone rows dropped below the attempts threshold",
	})

	m.missingPriors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "missing_prior_rows_dropped_total",
		Help:      "Total number of player-zone rows dropped for lack of a matching prior",
	})

	m.recordsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "posterior_records_total",
		Help:      "Total number of posterior records computed",
	})

	m.numericRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quantile_retries_total",
		Help:      "Total number of inverse-CDF evaluations that fell back to bisection",
	})

	m.numericFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quantile_failures_total",
		Help:      "Total number of rows excluded after inverse-CDF fallback also failed",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of posterior workers used in the last run",
	})

	m.recordTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "record_total",
		Help:      "Number of posterior records in the last completed run",
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the last completed pipeline run",
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)
}

// Package-level helpers operating on the global manager.

func RecordRowsIngested(n int) {
	if globalManager.enabled {
		globalManager.rowsIngested.Add(float64(n))
	}
}

func RecordRowMalformed() {
	if globalManager.enabled {
		globalManager.rowsMalformed.Inc()
	}
}

func UpdatePriorGroups(n int) {
	if globalManager.enabled {
		globalManager.priorGroups.Set(float64(n))
	}
}

func RecordEmptyGroupDropped() {
	if globalManager.enabled {
		globalManager.emptyGroups.Inc()
	}
}

func RecordSubThresholdRows(n int) {
	if globalManager.enabled {
		globalManager.subThresholdRows.Add(float64(n))
	}
}

func RecordMissingPriorDropped() {
	if globalManager.enabled {
		globalManager.missingPriors.Inc()
	}
}

func RecordPosteriorComputed() {
	if globalManager.enabled {
		globalManager.recordsComputed.Inc()
	}
}

func RecordQuantileRetry() {
	if globalManager.enabled {
		globalManager.numericRetries.Inc()
	}
}

func RecordQuantileFailure() {
	if globalManager.enabled {
		globalManager.numericFailures.Inc()
	}
}

func UpdateWorkerCount(n int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(n))
	}
}

func UpdateRecordTotal(n int) {
	if globalManager.enabled {
		globalManager.recordTotal.Set(float64(n))
	}
}

func UpdateLastRunUnix(ts int64) {
	if globalManager.enabled {
		globalManager.lastRunUnix.Set(float64(ts))
	}
}

func ObserveStageDuration(stage string, seconds float64) {
	if globalManager.enabled {
		globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
	}
}
