package catalog

// Object is the tagged wire-level representation of a single catalog
// entry inside an update batch: DATABASE, TABLE, VIEW, FUNCTION, or
// CATALOG_MARKER, carrying its version and kind-specific payload. It
// doubles as the "CatalogObject" record named in the external interface
// contract — the same shape flows in from a broadcast and out through the
// facade's DDL synthesis path.
type Object struct {
	Kind    Kind
	Version Version

	// Db names the owning database for every kind except CATALOG_MARKER,
	// which carries no identity at all.
	Db string
	// Name is the table/view name or function signature. Empty for
	// DATABASE and CATALOG_MARKER.
	Name string

	// Database payload.
	Owner    string
	Comment  string
	Location string

	// Table/view payload.
	Columns           []Column
	NumClusteringCols int
	Format            TableFormat
	Storage           *StorageDescriptor
	LoadError         error
}

// Key derives the Object Store / Delta Log key for this object. Returns the
// zero Key for CATALOG_MARKER, which has no store identity.
func (o Object) Key() Key {
	switch o.Kind {
	case KindDatabase:
		return NewDatabaseKey(o.Db)
	case KindTable, KindView:
		return NewTableKey(o.Kind, o.Db, o.Name)
	case KindFunction:
		return NewFunctionKey(o.Db, o.Name)
	default:
		return Key{}
	}
}

// Batch is one CatalogUpdateRequest: a set of additions and removals
// attributed to a single catalog service identity.
type Batch struct {
	Updated   []Object
	Removed   []Object
	ServiceID ServiceID
}

// Ack is the CatalogUpdateResponse returned from a successful ApplyUpdate.
type Ack struct {
	ServiceID ServiceID
}
