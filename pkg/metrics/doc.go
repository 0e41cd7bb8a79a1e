/*
Package metrics provides Prometheus metrics collection and exposition for
the catalog cache.

All metrics are registered at package init against the default Prometheus
registry, then exposed over HTTP by Handler for scraping.

# Metrics Catalog

Cache state:

  - catalogd_last_synced_catalog_version (gauge): the lastSyncedCatalogVersion
    watermark currently installed.
  - catalogd_delta_log_entries (gauge): live tombstone entries held in the
    delta log.
  - catalogd_ready (gauge): 1 once the cache has applied at least one
    batch, 0 before.
  - catalogd_databases_total / catalogd_tables_total (gauge): object store
    size.

Reconciliation:

  - catalogd_reconciliation_duration_seconds (histogram): time to apply one
    update batch.
  - catalogd_reconciliation_batches_total{outcome} (counter): batches
    applied, labeled "applied" or "service_id_changed".
  - catalogd_service_id_changes_total (counter): times the catalog service
    identity changed, each one flushing the object store.
  - catalogd_objects_skipped_total{reason} (counter): additions/removals
    skipped during reconciliation (stale_add, not_newer, parent_missing).

Authorization:

  - catalogd_auth_check_duration_seconds (histogram): time to evaluate one
    privilege check.
  - catalogd_auth_checks_total{outcome} (counter): checks, labeled
    "granted" or "denied".
  - catalogd_policy_reload_attempts_total / catalogd_policy_reload_failures_total
    (counter): policy file reload attempts and failures.

Facade:

  - catalogd_facade_requests_total{operation,status} (counter).
  - catalogd_facade_request_duration_seconds{operation} (histogram).
  - catalogd_metastore_leases_in_use (gauge): outstanding metastore pool
    leases.

# Usage

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDuration(metrics.ReconciliationDuration)

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDurationVec(metrics.FacadeRequestDuration, "get_table_names")

	http.Handle("/metrics", metrics.Handler())
*/
package metrics
