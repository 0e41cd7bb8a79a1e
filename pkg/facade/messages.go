package facade

import "github.com/cuemby/catalogd/pkg/catalog"

// ClientRequest is the outermost record a client-protocol caller sends:
// a statement plus the principal it is executed as.
type ClientRequest struct {
	SessionID string `json:"session_id"`
	Principal string `json:"principal"`
	Stmt      string `json:"stmt"`
}

// ExecRequest is the planner-facing record create_exec_request produces.
// SQL parsing, analysis, and planning are handled by an external
// collaborator; Planner below is the seam this package calls through.
type ExecRequest struct {
	RequestID string `json:"request_id"`
	Stmt      string `json:"stmt"`
}

// Planner is the external collaborator that turns a statement into an
// ExecRequest or an explain string. Catalog reads performed inside a
// Planner call MUST go through the Facade's Reconciler reader methods,
// which already take the Catalog lock's shared half.
type Planner interface {
	CreateExecRequest(req ClientRequest) (ExecRequest, error)
	Explain(req ClientRequest) (string, error)
}

// ServiceIDWire is the wire shape of catalog.ServiceID.
type ServiceIDWire struct {
	Hi uint64 `json:"hi"`
	Lo uint64 `json:"lo"`
}

func (w ServiceIDWire) toDomain() catalog.ServiceID {
	return catalog.ServiceID{Hi: w.Hi, Lo: w.Lo}
}

func serviceIDToWire(id catalog.ServiceID) ServiceIDWire {
	return ServiceIDWire{Hi: id.Hi, Lo: id.Lo}
}

// CatalogObject is the wire shape of catalog.Object — the tagged
// DATABASE|TABLE|VIEW|FUNCTION|CATALOG_MARKER record exchanged on an
// update batch.
// LoadError is carried as a message string at the wire boundary; the
// in-process catalog.Object wraps it back into an error value so
// INCOMPLETE tables keep an errors.Is/errors.As-compatible cause once
// inside the cache.
type CatalogObject struct {
	Kind              catalog.Kind             `json:"kind"`
	Version           catalog.Version          `json:"version"`
	Db                string                   `json:"db,omitempty"`
	Name              string                   `json:"name,omitempty"`
	Owner             string                   `json:"owner,omitempty"`
	Comment           string                   `json:"comment,omitempty"`
	Location          string                   `json:"location,omitempty"`
	Columns           []catalog.Column         `json:"columns,omitempty"`
	NumClusteringCols int                      `json:"num_clustering_cols,omitempty"`
	Format            catalog.TableFormat      `json:"format,omitempty"`
	Storage           *catalog.StorageDescriptor `json:"storage,omitempty"`
	LoadError         string                   `json:"load_error,omitempty"`
}

func (o CatalogObject) toDomain() catalog.Object {
	obj := catalog.Object{
		Kind:              o.Kind,
		Version:           o.Version,
		Db:                o.Db,
		Name:              o.Name,
		Owner:             o.Owner,
		Comment:           o.Comment,
		Location:          o.Location,
		Columns:           o.Columns,
		NumClusteringCols: o.NumClusteringCols,
		Format:            o.Format,
		Storage:           o.Storage,
	}
	if o.LoadError != "" {
		obj.LoadError = catalog.NewInternal(nil, "%s", o.LoadError)
	}
	return obj
}

func catalogObjectFromDomain(o catalog.Object) CatalogObject {
	wire := CatalogObject{
		Kind:              o.Kind,
		Version:           o.Version,
		Db:                o.Db,
		Name:              o.Name,
		Owner:             o.Owner,
		Comment:           o.Comment,
		Location:          o.Location,
		Columns:           o.Columns,
		NumClusteringCols: o.NumClusteringCols,
		Format:            o.Format,
		Storage:           o.Storage,
	}
	if o.LoadError != nil {
		wire.LoadError = o.LoadError.Error()
	}
	return wire
}

// CatalogUpdateRequest is the wire shape of a broadcast or direct-update
// batch.
type CatalogUpdateRequest struct {
	UpdatedObjects   []CatalogObject `json:"updated_objects"`
	RemovedObjects   []CatalogObject `json:"removed_objects"`
	CatalogServiceID ServiceIDWire   `json:"catalog_service_id"`
}

func (r CatalogUpdateRequest) toBatch() catalog.Batch {
	batch := catalog.Batch{ServiceID: r.CatalogServiceID.toDomain()}
	for _, o := range r.UpdatedObjects {
		batch.Updated = append(batch.Updated, o.toDomain())
	}
	for _, o := range r.RemovedObjects {
		batch.Removed = append(batch.Removed, o.toDomain())
	}
	return batch
}

// CatalogUpdateResponse is the wire shape of a successful ApplyUpdate ack.
type CatalogUpdateResponse struct {
	CatalogServiceID ServiceIDWire `json:"catalog_service_id"`
}

// GetDbsParams/GetDbsResult back get_db_names.
type GetDbsParams struct {
	Pattern   string `json:"pattern"`
	Principal string `json:"principal"`
}

type GetDbsResult struct {
	Dbs []string `json:"dbs"`
}

// GetTablesParams/GetTablesResult back get_table_names.
type GetTablesParams struct {
	Db        string `json:"db"`
	Pattern   string `json:"pattern"`
	Principal string `json:"principal"`
}

type GetTablesResult struct {
	Tables []string `json:"tables"`
}

// DescribeTableParams/DescribeTableResult back describe_table.
type DescribeTableParams struct {
	Db        string `json:"db"`
	Table     string `json:"table"`
	Principal string `json:"principal"`
}

type DescribeTableResult struct {
	Owner             string                     `json:"owner"`
	Columns           []catalog.Column           `json:"columns"`
	NumClusteringCols int                        `json:"num_clustering_cols"`
	Format            catalog.TableFormat        `json:"format"`
	Storage           *catalog.StorageDescriptor `json:"storage,omitempty"`
}

// MetadataOpKind enumerates the client-protocol metadata operations.
type MetadataOpKind int

const (
	MetadataOpGetSchemas MetadataOpKind = iota
	MetadataOpGetTables
	MetadataOpGetColumns
	MetadataOpGetTypes
)

// MetadataOpRequest/MetadataOpResponse back exec_metadata_op.
type MetadataOpRequest struct {
	Op        MetadataOpKind `json:"op"`
	Db        string         `json:"db,omitempty"`
	Table     string         `json:"table,omitempty"`
	Pattern   string         `json:"pattern,omitempty"`
	Principal string         `json:"principal"`
}

type MetadataOpResponse struct {
	Rows []map[string]string `json:"rows"`
}

// AlterKind tags the AlterTableParams union.
type AlterKind int

const (
	AlterAddReplaceColumns AlterKind = iota
	AlterAddPartition
	AlterDropColumn
	AlterChangeColumn
	AlterDropPartition
	AlterRenameTable
	AlterSetFileFormat
	AlterSetLocation
)

func (k AlterKind) String() string {
	switch k {
	case AlterAddReplaceColumns:
		return "ADD_REPLACE_COLUMNS"
	case AlterAddPartition:
		return "ADD_PARTITION"
	case AlterDropColumn:
		return "DROP_COLUMN"
	case AlterChangeColumn:
		return "CHANGE_COLUMN"
	case AlterDropPartition:
		return "DROP_PARTITION"
	case AlterRenameTable:
		return "RENAME_TABLE"
	case AlterSetFileFormat:
		return "SET_FILE_FORMAT"
	case AlterSetLocation:
		return "SET_LOCATION"
	default:
		return "UNKNOWN"
	}
}

// AlterTableParams is the tagged union of per-alter-kind sub-params.
// Exactly one of the pointer fields matching Kind is expected to be set;
// AlterTable dispatches on Kind and ignores the rest.
type AlterTableParams struct {
	Kind      AlterKind `json:"kind"`
	Db        string    `json:"db"`
	Table     string    `json:"table"`
	Principal string    `json:"principal"`

	AddReplaceColumns *AddReplaceColumnsParams `json:"add_replace_columns,omitempty"`
	AddPartition      *PartitionParams         `json:"add_partition,omitempty"`
	DropColumn        *DropColumnParams        `json:"drop_column,omitempty"`
	ChangeColumn      *ChangeColumnParams      `json:"change_column,omitempty"`
	DropPartition     *PartitionParams         `json:"drop_partition,omitempty"`
	RenameTable       *RenameTableParams       `json:"rename_table,omitempty"`
	SetFileFormat     *SetFileFormatParams     `json:"set_file_format,omitempty"`
	SetLocation       *SetLocationParams       `json:"set_location,omitempty"`
}

type AddReplaceColumnsParams struct {
	Columns []catalog.Column `json:"columns"`
	Replace bool             `json:"replace"`
}

type PartitionParams struct {
	Values []string `json:"values"`
}

type DropColumnParams struct {
	Column string `json:"column"`
}

type ChangeColumnParams struct {
	OldName string        `json:"old_name"`
	NewCol  catalog.Column `json:"new_col"`
}

type RenameTableParams struct {
	NewDb    string `json:"new_db"`
	NewTable string `json:"new_table"`
}

type SetFileFormatParams struct {
	Format catalog.TableFormat `json:"format"`
}

type SetLocationParams struct {
	Location string `json:"location"`
}

// CreateDbParams backs create_database.
type CreateDbParams struct {
	Db          string `json:"db"`
	Owner       string `json:"owner"`
	Comment     string `json:"comment"`
	Location    string `json:"location"`
	Principal   string `json:"principal"`
	IfNotExists bool   `json:"if_not_exists"`
}

// CreateTableParams backs create_table.
type CreateTableParams struct {
	Db                string                     `json:"db"`
	Table             string                     `json:"table"`
	Owner             string                     `json:"owner"`
	Columns           []catalog.Column           `json:"columns"`
	NumClusteringCols int                        `json:"num_clustering_cols"`
	Format            catalog.TableFormat        `json:"format"`
	Storage           *catalog.StorageDescriptor `json:"storage,omitempty"`
	Principal         string                     `json:"principal"`
	IfNotExists       bool                       `json:"if_not_exists"`
}

// CreateTableLikeParams backs create_table_like: Columns/Format/Storage
// are copied from SrcDb.SrcTable by the Facade, not supplied by the
// caller.
type CreateTableLikeParams struct {
	Db          string `json:"db"`
	Table       string `json:"table"`
	SrcDb       string `json:"src_db"`
	SrcTable    string `json:"src_table"`
	Owner       string `json:"owner"`
	Principal   string `json:"principal"`
	IfNotExists bool   `json:"if_not_exists"`
}

// DropDbParams backs drop_database.
type DropDbParams struct {
	Db        string `json:"db"`
	Principal string `json:"principal"`
	IfExists  bool   `json:"if_exists"`
	Cascade   bool   `json:"cascade"`
}

// DropTableParams backs drop_table.
type DropTableParams struct {
	Db        string `json:"db"`
	Table     string `json:"table"`
	Principal string `json:"principal"`
	IfExists  bool   `json:"if_exists"`
}

// UpdateMetastoreParams backs update_metastore: a forced reload of one
// table's definition from the MetaStore without an intervening broadcast.
type UpdateMetastoreParams struct {
	Db        string `json:"db"`
	Table     string `json:"table"`
	Principal string `json:"principal"`
}
