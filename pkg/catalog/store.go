package catalog

import (
	"sort"
	"strings"
)

// Store is the cache proper: a mapping from database name to database
// record, each holding child mappings to tables and functions. Store
// carries no internal locking of its own — it is always driven from under
// the single Catalog lock (Reconciler.mu in pkg/reconciler), matching the source's
// choice to keep the consistency domain (store + delta log + serviceId +
// watermark) behind exactly one reader/writer lock.
type Store struct {
	databases map[string]*Database
}

// NewStore returns an empty Object Store.
func NewStore() *Store {
	return &Store{databases: make(map[string]*Database)}
}

// GetDatabase performs the case-insensitive database lookup.
func (s *Store) GetDatabase(name string) *Database {
	return s.databases[strings.ToLower(name)]
}

// ContainsTable reports whether db.tbl is present, case-insensitively.
func (s *Store) ContainsTable(db, table string) bool {
	d := s.GetDatabase(db)
	if d == nil {
		return false
	}
	_, ok := d.Tables[strings.ToLower(table)]
	return ok
}

// GetTable returns the table record, which may be an INCOMPLETE record the
// caller must detect (Table.Incomplete) and surface lazily.
func (s *Store) GetTable(db, table string) *Table {
	d := s.GetDatabase(db)
	if d == nil {
		return nil
	}
	return d.Tables[strings.ToLower(table)]
}

// GetFunction looks up a function by its canonical signature.
func (s *Store) GetFunction(db, signature string) *Function {
	d := s.GetDatabase(db)
	if d == nil {
		return nil
	}
	return d.Functions[signature]
}

// ListDatabaseNames returns every database name matching pattern, ordered.
func (s *Store) ListDatabaseNames(pattern string) []string {
	names := make([]string, 0, len(s.databases))
	for _, d := range s.databases {
		if MatchPattern(pattern, d.Name) {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ListTableNames returns every table/view name in db matching pattern,
// ordered. Returns nil if db does not exist.
func (s *Store) ListTableNames(db, pattern string) []string {
	d := s.GetDatabase(db)
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Tables))
	for name := range d.Tables {
		if MatchPattern(pattern, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PutDatabase inserts or wholesale-replaces a database record. Version
// ordering is the caller's (Reconciler's) responsibility, per the source's
// "caller-enforced ordering" contract. An existing database's child Tables
// and Functions maps are carried forward onto the replacement record so a
// metadata-only update (owner, comment, location) never drops children —
// those are independently versioned objects applied via PutTable/
// PutFunction.
func (s *Store) PutDatabase(rec *Database) {
	if existing, ok := s.databases[rec.Name]; ok {
		rec.Tables = existing.Tables
		rec.Functions = existing.Functions
	}
	s.databases[rec.Name] = rec
}

// PutTable inserts or replaces a table/view record under its owning
// database. Returns false if the parent database is not present, in which
// case the Reconciler logs and skips per §4.3 step 3.
func (s *Store) PutTable(db string, rec *Table) bool {
	d := s.GetDatabase(db)
	if d == nil {
		return false
	}
	d.Tables[rec.Name] = rec
	return true
}

// PutFunction inserts or replaces a function record under its owning
// database. Returns false if the parent database is not present.
func (s *Store) PutFunction(db string, rec *Function) bool {
	d := s.GetDatabase(db)
	if d == nil {
		return false
	}
	d.Functions[rec.Signature] = rec
	return true
}

// RemoveDatabase is idempotent.
func (s *Store) RemoveDatabase(name string) {
	delete(s.databases, strings.ToLower(name))
}

// RemoveTable is idempotent.
func (s *Store) RemoveTable(db, table string) {
	d := s.GetDatabase(db)
	if d == nil {
		return
	}
	delete(d.Tables, strings.ToLower(table))
}

// RemoveFunction is idempotent.
func (s *Store) RemoveFunction(db, signature string) {
	d := s.GetDatabase(db)
	if d == nil {
		return
	}
	delete(d.Functions, signature)
}

// Clear empties the store. Used by the Reconciler on a detected
// service-ID change, ahead of a forced full resync.
func (s *Store) Clear() {
	s.databases = make(map[string]*Database)
}

// DatabaseCount and TableCount back the metrics gauges; they are cheap
// full-store walks and expected to be called at collector cadence, not
// per-request.
func (s *Store) DatabaseCount() int {
	return len(s.databases)
}

func (s *Store) TableCount() int {
	n := 0
	for _, d := range s.databases {
		n += len(d.Tables)
	}
	return n
}
