package catalog

import "strings"

// TableFormat tags the polymorphic Table payload. INCOMPLETE is not a file
// format; it marks a table whose metadata failed to load.
type TableFormat int

const (
	FormatHDFSText TableFormat = iota
	FormatHDFSRCFile
	FormatHDFSParquet
	FormatHDFSSequence
	FormatHDFSAvro
	FormatHBase
	FormatIncomplete
)

func (f TableFormat) String() string {
	switch f {
	case FormatHDFSText:
		return "HDFS_TEXT"
	case FormatHDFSRCFile:
		return "HDFS_RCFILE"
	case FormatHDFSParquet:
		return "HDFS_PARQUET"
	case FormatHDFSSequence:
		return "HDFS_SEQUENCE"
	case FormatHDFSAvro:
		return "HDFS_AVRO"
	case FormatHBase:
		return "HBASE"
	case FormatIncomplete:
		return "INCOMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Column is a single table column. Comment is optional.
type Column struct {
	Name    string
	Type    string
	Comment string
}

// StorageDescriptor is the opaque, DDL-constructed payload that locates a
// table's data. The cache never interprets it — it is a pure pass-through
// carried on the Table record for the query planner's benefit.
type StorageDescriptor struct {
	Location   string
	FileFormat string
	RowFormat  string
}

// Table is the polymorphic catalog entry for a table or view. Dispatch on
// Format replaces an inheritance hierarchy: the only behavior that differs
// by format is storage-descriptor interpretation, which lives entirely in
// the Storage field and is opaque to this package.
//
// Db is a non-owning back-reference: callers resolve the owning Database
// through the Object Store by name, never through a pointer, so replacing
// a Database record in the store never dangles a Table that predates it.
type Table struct {
	ID                uint64
	Db                string
	Name              string
	Owner             string
	Columns           []Column
	NumClusteringCols int
	Version           Version
	Format            TableFormat
	Storage           *StorageDescriptor
	LoadError         error

	columnIndex map[string]int
}

// NewTable constructs a Table and builds its case-insensitive column index.
func NewTable(db, name string, columns []Column, numClusteringCols int, version Version, format TableFormat, storage *StorageDescriptor) *Table {
	t := &Table{
		Db:                strings.ToLower(db),
		Name:              strings.ToLower(name),
		Columns:           columns,
		NumClusteringCols: numClusteringCols,
		Version:           version,
		Format:            format,
		Storage:           storage,
	}
	t.buildIndex()
	return t
}

// NewIncompleteTable constructs a placeholder record signaling a load
// failure. It carries the error but does not surface it until accessed
// (DescribeTable), per the lazy-reraise propagation policy.
func NewIncompleteTable(db, name string, version Version, loadErr error) *Table {
	return &Table{
		Db:        strings.ToLower(db),
		Name:      strings.ToLower(name),
		Version:   version,
		Format:    FormatIncomplete,
		LoadError: loadErr,
	}
}

func (t *Table) buildIndex() {
	t.columnIndex = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.columnIndex[strings.ToLower(c.Name)] = i
	}
}

// Incomplete reports whether loading this table's metadata failed.
func (t *Table) Incomplete() bool {
	return t.Format == FormatIncomplete
}

// GetColumn performs a case-insensitive column lookup.
func (t *Table) GetColumn(name string) (Column, bool) {
	if t.columnIndex == nil {
		t.buildIndex()
	}
	idx, ok := t.columnIndex[strings.ToLower(name)]
	if !ok {
		return Column{}, false
	}
	return t.Columns[idx], true
}

// ClusteringColumns returns the leading partition columns, positions
// [0, NumClusteringCols) of Columns.
func (t *Table) ClusteringColumns() []Column {
	if t.NumClusteringCols > len(t.Columns) {
		return t.Columns
	}
	return t.Columns[:t.NumClusteringCols]
}

// Function is a catalog function entry, keyed by its canonical signature.
type Function struct {
	Signature string
	Db        string
	Version   Version
}

// Database owns child Tables and Functions. PutDatabase installs a new
// Database record on update, but carries the old record's Tables and
// Functions maps forward into it, and PutTable/PutFunction/RemoveTable/
// RemoveFunction mutate those maps in place. A reader holding a
// *Database therefore sees its child maps change under it; callers
// should re-resolve through the Object Store under the Catalog lock
// rather than caching a *Database across calls.
type Database struct {
	Name      string
	Owner     string
	Comment   string
	Location  string
	Version   Version
	Tables    map[string]*Table
	Functions map[string]*Function
}

// NewDatabase constructs an empty Database record at the given version.
func NewDatabase(name, owner, comment, location string, version Version) *Database {
	return &Database{
		Name:      strings.ToLower(name),
		Owner:     owner,
		Comment:   comment,
		Location:  location,
		Version:   version,
		Tables:    make(map[string]*Table),
		Functions: make(map[string]*Function),
	}
}
