// Package reconciler implements the Update Reconciler: the component that
// applies a batch of catalog additions and removals under a single
// exclusive lock, the serialization point no reader ever observes a
// partial view of.
package reconciler

import (
	"strings"
	"sync"

	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/deltalog"
	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/metrics"
	"github.com/rs/zerolog"
)

// Reconciler owns the entire consistency domain known as the
// "Catalog lock": the Object Store, the Delta Log, the installed
// ServiceID, and the lastSyncedCatalogVersion watermark. Every mutation
// and every read of that state goes through the single mu below.
type Reconciler struct {
	mu sync.RWMutex

	store     *catalog.Store
	deltaLog  *deltalog.Log
	serviceID catalog.ServiceID
	watermark catalog.Version
	ready     bool

	logger zerolog.Logger

	incoming chan catalog.Batch
	stopCh   chan struct{}
}

// NewReconciler returns a Reconciler with an empty Object Store and Delta
// Log, awaiting its first batch.
func NewReconciler() *Reconciler {
	return &Reconciler{
		store:    catalog.NewStore(),
		deltaLog: deltalog.New(),
		logger:   log.WithComponent("reconciler"),
		incoming: make(chan catalog.Batch, 64),
		stopCh:   make(chan struct{}),
	}
}

// Start begins draining batches submitted through Submit. This generalizes
// the ticking reconciliation loop into a channel-driven one: batches arrive
// from a broadcast feed or are queued by direct-DDL callers instead of
// being recomputed on a timer.
func (r *Reconciler) Start() {
	go r.run()
}

// Stop halts the drain loop. Pending, already-submitted batches are not
// applied.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

func (r *Reconciler) run() {
	r.logger.Info().Msg("reconciler started")
	for {
		select {
		case batch := <-r.incoming:
			if _, err := r.ApplyUpdate(batch); err != nil {
				// Log and continue: a rejected batch does not stop the
				// drain loop, it just leaves the cache unready until a
				// resync batch carrying the new ServiceID arrives.
				r.logger.Error().Err(err).Msg("reconciliation batch rejected")
			}
		case <-r.stopCh:
			r.logger.Info().Msg("reconciler stopped")
			return
		}
	}
}

// Submit enqueues a batch for asynchronous application by the drain loop.
// Direct-DDL callers that need the Ack inline should call ApplyUpdate
// directly instead; it is safe to call concurrently with Submit.
func (r *Reconciler) Submit(batch catalog.Batch) {
	r.incoming <- batch
}

// ApplyUpdate runs the full batch-apply protocol under the exclusive
// Catalog lock:
//
//  1. Service-ID check: adopt the incoming ServiceID if none is installed
//     yet; otherwise a mismatch flushes the store and returns
//     ErrServiceIDChanged.
//  2. Compute the new watermark from any CATALOG_MARKER in the batch.
//  3. Apply additions in order, suppressing stale adds the Delta Log says
//     were already dropped by a newer removal.
//  4. Apply removals in order, using the heartbeat version-0-inherits-
//     batch-version rule, and recording a Delta Log tombstone for any
//     direct (non-broadcast) drop.
//  5. Advance the watermark, garbage-collect the Delta Log at or below it, and
//     flip the readiness flag.
func (r *Reconciler) ApplyUpdate(batch catalog.Batch) (catalog.Ack, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)

	r.mu.Lock()
	defer r.mu.Unlock()

	if batch.ServiceID != r.serviceID {
		if r.serviceID.IsSentinel() {
			r.serviceID = batch.ServiceID
			log.WithCatalogServiceID(r.logger, batch.ServiceID.String()).Info().Msg("adopted catalog service identity")
		} else {
			r.store.Clear()
			r.deltaLog = deltalog.New()
			r.watermark = catalog.NoVersion
			r.serviceID = catalog.NoService
			r.ready = false
			metrics.ServiceIDChangesTotal.Inc()
			metrics.ReconciliationBatchesTotal.WithLabelValues("service_id_changed").Inc()
			r.updateGauges()
			log.WithCatalogServiceID(r.logger, batch.ServiceID.String()).Warn().Msg("catalog service identity changed, flushed object store")
			return catalog.Ack{}, catalog.ErrServiceIDChanged
		}
	}

	priorWatermark := r.watermark
	newVersion := r.watermark
	for _, obj := range batch.Updated {
		if obj.Kind == catalog.KindCatalogMarker && obj.Version.Newer(newVersion) {
			newVersion = obj.Version
		}
	}

	for _, obj := range batch.Updated {
		if obj.Kind == catalog.KindCatalogMarker {
			continue
		}
		r.applyAddition(obj)
	}

	for _, obj := range batch.Removed {
		r.applyRemoval(obj, newVersion, priorWatermark)
	}

	r.watermark = newVersion
	r.deltaLog.GarbageCollect(newVersion)
	r.ready = true

	metrics.ReconciliationBatchesTotal.WithLabelValues("applied").Inc()
	r.updateGauges()

	return catalog.Ack{ServiceID: r.serviceID}, nil
}

func (r *Reconciler) updateGauges() {
	metrics.LastSyncedVersion.Set(float64(r.watermark))
	metrics.DeltaLogSize.Set(float64(r.deltaLog.Len()))
	metrics.DatabasesTotal.Set(float64(r.store.DatabaseCount()))
	metrics.TablesTotal.Set(float64(r.store.TableCount()))
	if r.ready {
		metrics.Ready.Set(1)
	} else {
		metrics.Ready.Set(0)
	}
}

// applyAddition inserts or replaces one record per the monotonic-version
// and stale-add-suppression rules. Parent-missing and not-newer are both
// "log and skip", never errors — a single bad object in a batch never
// aborts the whole batch.
func (r *Reconciler) applyAddition(obj catalog.Object) {
	key := obj.Key()
	if r.deltaLog.WasRemovedAfter(key, obj.Version) {
		metrics.ObjectsSkippedTotal.WithLabelValues("stale_add").Inc()
		r.logger.Debug().Stringer("key", key).Msg("suppressing stale add, already dropped by a newer removal")
		return
	}

	switch obj.Kind {
	case catalog.KindDatabase:
		existing := r.store.GetDatabase(obj.Db)
		if existing != nil && !obj.Version.Newer(existing.Version) {
			metrics.ObjectsSkippedTotal.WithLabelValues("not_newer").Inc()
			return
		}
		r.store.PutDatabase(catalog.NewDatabase(obj.Db, obj.Owner, obj.Comment, obj.Location, obj.Version))

	case catalog.KindTable, catalog.KindView:
		existing := r.store.GetTable(obj.Db, obj.Name)
		if existing != nil && !obj.Version.Newer(existing.Version) {
			metrics.ObjectsSkippedTotal.WithLabelValues("not_newer").Inc()
			return
		}
		var rec *catalog.Table
		if obj.LoadError != nil {
			rec = catalog.NewIncompleteTable(obj.Db, obj.Name, obj.Version, obj.LoadError)
		} else {
			rec = catalog.NewTable(obj.Db, obj.Name, obj.Columns, obj.NumClusteringCols, obj.Version, obj.Format, obj.Storage)
		}
		if !r.store.PutTable(obj.Db, rec) {
			metrics.ObjectsSkippedTotal.WithLabelValues("parent_missing").Inc()
			log.WithTable(log.WithDatabase(r.logger, obj.Db), obj.Name).Warn().Msg("parent database not present, skipping table add")
		}

	case catalog.KindFunction:
		existing := r.store.GetFunction(obj.Db, obj.Name)
		if existing != nil && !obj.Version.Newer(existing.Version) {
			metrics.ObjectsSkippedTotal.WithLabelValues("not_newer").Inc()
			return
		}
		rec := &catalog.Function{Signature: obj.Name, Db: strings.ToLower(obj.Db), Version: obj.Version}
		if !r.store.PutFunction(obj.Db, rec) {
			metrics.ObjectsSkippedTotal.WithLabelValues("parent_missing").Inc()
			log.WithDatabase(r.logger, obj.Db).Warn().Str("function", obj.Name).Msg("parent database not present, skipping function add")
		}
	}
}

// applyRemoval drops a record if it is older than the drop version, and
// records a Delta Log tombstone when the removal was not already implied
// by this batch's own watermark advance (i.e. a direct DDL drop observed
// ahead of the broadcast stream).
func (r *Reconciler) applyRemoval(obj catalog.Object, newVersion, priorWatermark catalog.Version) {
	dropVersion := obj.Version
	if dropVersion == catalog.NoVersion {
		dropVersion = newVersion
	}

	switch obj.Kind {
	case catalog.KindDatabase:
		if existing := r.store.GetDatabase(obj.Db); existing != nil && existing.Version < dropVersion {
			r.store.RemoveDatabase(obj.Db)
		}
	case catalog.KindTable, catalog.KindView:
		if existing := r.store.GetTable(obj.Db, obj.Name); existing != nil && existing.Version < dropVersion {
			r.store.RemoveTable(obj.Db, obj.Name)
		}
	case catalog.KindFunction:
		if existing := r.store.GetFunction(obj.Db, obj.Name); existing != nil && existing.Version < dropVersion {
			r.store.RemoveFunction(obj.Db, obj.Name)
		}
	}

	if obj.Version > priorWatermark {
		r.deltaLog.RecordDrop(obj.Key(), obj.Kind, dropVersion)
	}
}

// --- Read-side accessors, all taken under the shared half of the lock ---

// ServiceID returns the currently installed catalog service identity.
func (r *Reconciler) ServiceID() catalog.ServiceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.serviceID
}

// LastSyncedVersion returns the current watermark.
func (r *Reconciler) LastSyncedVersion() catalog.Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watermark
}

// Ready reports whether at least one batch has been applied.
func (r *Reconciler) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// GetDatabase resolves a database by name.
func (r *Reconciler) GetDatabase(name string) *catalog.Database {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetDatabase(name)
}

// GetTable resolves a table or view by name, which may be an incomplete
// record the caller must detect and re-raise.
func (r *Reconciler) GetTable(db, table string) *catalog.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetTable(db, table)
}

// GetFunction resolves a function by canonical signature.
func (r *Reconciler) GetFunction(db, signature string) *catalog.Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetFunction(db, signature)
}

// ListDatabaseNames lists database names matching pattern.
func (r *Reconciler) ListDatabaseNames(pattern string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.ListDatabaseNames(pattern)
}

// ListTableNames lists table/view names in db matching pattern.
func (r *Reconciler) ListTableNames(db, pattern string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.ListTableNames(db, pattern)
}

// DeltaLogSize reports the current number of live tombstone entries.
func (r *Reconciler) DeltaLogSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deltaLog.Len()
}
