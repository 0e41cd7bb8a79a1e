package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Catalog state gauges
	LastSyncedVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_last_synced_catalog_version",
			Help: "The lastSyncedCatalogVersion watermark currently installed",
		},
	)

	DeltaLogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_delta_log_entries",
			Help: "Number of live tombstone entries held in the delta log",
		},
	)

	Ready = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_ready",
			Help: "Whether the cache has applied at least one batch (1 = ready, 0 = not ready)",
		},
	)

	DatabasesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_databases_total",
			Help: "Total number of databases held in the object store",
		},
	)

	TablesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_tables_total",
			Help: "Total number of tables and views held in the object store",
		},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalogd_reconciliation_duration_seconds",
			Help:    "Time taken to apply one update batch in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogd_reconciliation_batches_total",
			Help: "Total number of update batches applied, by outcome",
		},
		[]string{"outcome"},
	)

	ServiceIDChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogd_service_id_changes_total",
			Help: "Total number of times the catalog service identity changed",
		},
	)

	ObjectsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogd_objects_skipped_total",
			Help: "Total number of additions/removals skipped during reconciliation, by reason",
		},
		[]string{"reason"},
	)

	// Authorization metrics
	AuthCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalogd_auth_check_duration_seconds",
			Help:    "Time taken to evaluate a single privilege check in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AuthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogd_auth_checks_total",
			Help: "Total number of privilege checks, by outcome",
		},
		[]string{"outcome"},
	)

	// Policy reloader metrics
	PolicyReloadAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogd_policy_reload_attempts_total",
			Help: "Total number of policy reload attempts",
		},
	)

	PolicyReloadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalogd_policy_reload_failures_total",
			Help: "Total number of policy reload attempts that failed",
		},
	)

	// Request facade metrics
	FacadeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogd_facade_requests_total",
			Help: "Total number of facade requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	FacadeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalogd_facade_request_duration_seconds",
			Help:    "Facade request duration in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// MetaStore client pool metrics
	MetaStoreLeasesInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalogd_metastore_leases_in_use",
			Help: "Number of metastore client leases currently checked out",
		},
	)
)

func init() {
	prometheus.MustRegister(LastSyncedVersion)
	prometheus.MustRegister(DeltaLogSize)
	prometheus.MustRegister(Ready)
	prometheus.MustRegister(DatabasesTotal)
	prometheus.MustRegister(TablesTotal)

	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationBatchesTotal)
	prometheus.MustRegister(ServiceIDChangesTotal)
	prometheus.MustRegister(ObjectsSkippedTotal)

	prometheus.MustRegister(AuthCheckDuration)
	prometheus.MustRegister(AuthChecksTotal)

	prometheus.MustRegister(PolicyReloadAttemptsTotal)
	prometheus.MustRegister(PolicyReloadFailuresTotal)

	prometheus.MustRegister(FacadeRequestsTotal)
	prometheus.MustRegister(FacadeRequestDuration)

	prometheus.MustRegister(MetaStoreLeasesInUse)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
