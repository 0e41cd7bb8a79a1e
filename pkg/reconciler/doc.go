/*
Package reconciler implements the Update Reconciler: the single place a
batch of catalog broadcast deltas or direct-DDL updates is applied to the
in-memory Object Store.

Every batch runs under one exclusive lock end to end, so no reader ever
observes a partially-applied batch. Additions are applied in order, with
stale adds suppressed against the Delta Log; removals are applied in
order, using the batch's own watermark for heartbeat-style drops that
carry no explicit version. See ApplyUpdate for the full protocol.
*/
package reconciler
