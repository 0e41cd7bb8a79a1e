// Package deltalog implements the tombstone record that prevents a stale
// "add" broadcast from resurrecting an object already dropped by a
// direct-DDL update the broadcast stream hasn't caught up to yet.
package deltalog

import "github.com/cuemby/catalogd/pkg/catalog"

// entry is one recorded drop.
type entry struct {
	kind    catalog.Kind
	version catalog.Version
}

// Log is a bounded record of dropped-object entries keyed by object
// identity. Like catalog.Store, it carries no internal locking: every
// operation runs under the caller's Catalog lock.
type Log struct {
	entries map[catalog.Key]entry
}

// New returns an empty Delta Log.
func New() *Log {
	return &Log{entries: make(map[catalog.Key]entry)}
}

// RecordDrop inserts or overwrites the drop entry for key. A later drop of
// the same key always replaces an earlier one with the higher version —
// callers are expected to only ever increase the recorded version, but
// RecordDrop itself is unconditional (the Reconciler already establishes
// dropVersion via the heartbeat/direct-DDL rule before calling this).
func (l *Log) RecordDrop(key catalog.Key, kind catalog.Kind, version catalog.Version) {
	l.entries[key] = entry{kind: kind, version: version}
}

// WasRemovedAfter reports whether key was dropped at a version strictly
// greater than version — the check that suppresses a stale add.
func (l *Log) WasRemovedAfter(key catalog.Key, version catalog.Version) bool {
	e, ok := l.entries[key]
	if !ok {
		return false
	}
	return e.version > version
}

// GarbageCollect removes every entry whose drop-version is at or below
// watermark. Deviation from the source: GC here is total and accepts any
// watermark, including one below every recorded entry (a no-op in that
// case) — see the design-notes discussion of the suppressed
// IllegalArgumentException in the original; this implementation simply
// never raises it, rather than raising and swallowing it.
func (l *Log) GarbageCollect(watermark catalog.Version) {
	for key, e := range l.entries {
		if e.version <= watermark {
			delete(l.entries, key)
		}
	}
}

// Len reports the number of live tombstone entries, used by the delta-log
// size gauge.
func (l *Log) Len() int {
	return len(l.entries)
}
