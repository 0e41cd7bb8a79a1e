package facade

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/catalogd/pkg/authz"
	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/metastore"
	"github.com/cuemby/catalogd/pkg/metrics"
	"github.com/cuemby/catalogd/pkg/policyreload"
	"github.com/cuemby/catalogd/pkg/reconciler"
	"github.com/rs/zerolog"
)

// Facade is the Request Facade: the single entry point the query layer
// (and, through server.go, any external invoker) drives the cache
// through. Beyond the last direct-update version it issued, it owns no
// state of its own, only references to the components that do — the
// Reconciler for the Catalog lock's domain, the Reloader for the
// currently installed AuthorizationChecker, and a MetaStore pool for DDL
// fan-out.
type Facade struct {
	reconciler   *reconciler.Reconciler
	authReloader *policyreload.Reloader
	authEnabled  bool
	pool         *metastore.Pool
	planner      Planner
	logger       zerolog.Logger

	versionMu  sync.Mutex
	lastIssued catalog.Version
}

// New builds a Facade. planner may be nil; operations that need it
// (CreateExecRequest, Explain) fail with UnsupportedOperation if so,
// since SQL planning is an external collaborator out of this package's
// scope.
func New(rec *reconciler.Reconciler, authReloader *policyreload.Reloader, authEnabled bool, pool *metastore.Pool, planner Planner) *Facade {
	return &Facade{
		reconciler:   rec,
		authReloader: authReloader,
		authEnabled:  authEnabled,
		pool:         pool,
		planner:      planner,
		logger:       log.WithComponent("facade"),
	}
}

func (f *Facade) checker() *authz.Checker {
	return f.authReloader.Checker()
}

// checkAccess enforces req for principal, unless authorization has been
// turned off entirely via configuration.
func (f *Facade) checkAccess(principal string, req authz.PrivilegeRequest) error {
	if !f.authEnabled {
		return nil
	}
	return f.checker().CheckAccess(principal, req)
}

func (f *Facade) hasAccess(principal string, req authz.PrivilegeRequest) bool {
	if !f.authEnabled {
		return true
	}
	return f.checker().HasAccess(principal, req)
}

func track(op string) func(status string) {
	timer := metrics.NewTimer()
	return func(status string) {
		timer.ObserveDurationVec(metrics.FacadeRequestDuration, op)
		metrics.FacadeRequestsTotal.WithLabelValues(op, status).Inc()
	}
}

// GetDbNames lists database names matching params.Pattern, filtered to
// those params.Principal holds at least VIEW_METADATA on.
func (f *Facade) GetDbNames(params GetDbsParams) (GetDbsResult, error) {
	done := track("get_db_names")
	defer done("ok")

	all := f.reconciler.ListDatabaseNames(params.Pattern)
	visible := make([]string, 0, len(all))
	for _, name := range all {
		req := authz.PrivilegeRequest{Privilege: authz.PrivilegeViewMetadata, Target: authz.DatabaseTarget{Db: name}}
		if f.hasAccess(params.Principal, req) {
			visible = append(visible, name)
		}
	}
	return GetDbsResult{Dbs: visible}, nil
}

// GetTableNames lists table/view names in params.Db matching
// params.Pattern, filtered the same way as GetDbNames.
func (f *Facade) GetTableNames(params GetTablesParams) (GetTablesResult, error) {
	done := track("get_table_names")

	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeViewMetadata, Target: authz.DatabaseTarget{Db: params.Db}}); err != nil {
		done("denied")
		return GetTablesResult{}, err
	}

	all := f.reconciler.ListTableNames(params.Db, params.Pattern)
	visible := make([]string, 0, len(all))
	for _, name := range all {
		req := authz.PrivilegeRequest{Privilege: authz.PrivilegeViewMetadata, Target: authz.TableTarget{Db: params.Db, Table: name}}
		if f.hasAccess(params.Principal, req) {
			visible = append(visible, name)
		}
	}
	done("ok")
	return GetTablesResult{Tables: visible}, nil
}

// DescribeTable resolves db.table under a VIEW_METADATA check. An
// INCOMPLETE table re-raises its load failure here — never at
// cache-population time.
func (f *Facade) DescribeTable(params DescribeTableParams) (DescribeTableResult, error) {
	done := track("describe_table")

	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeViewMetadata, Target: authz.TableTarget{Db: params.Db, Table: params.Table}}); err != nil {
		done("denied")
		return DescribeTableResult{}, err
	}

	db := f.reconciler.GetDatabase(params.Db)
	if db == nil {
		done("not_found")
		return DescribeTableResult{}, catalog.NewDatabaseNotFound(params.Db)
	}
	tbl := f.reconciler.GetTable(params.Db, params.Table)
	if tbl == nil {
		done("not_found")
		return DescribeTableResult{}, catalog.NewTableNotFound(params.Db, params.Table)
	}
	if tbl.Incomplete() {
		done("incomplete")
		return DescribeTableResult{}, catalog.NewTableLoading(params.Db, params.Table, tbl.LoadError)
	}

	done("ok")
	return DescribeTableResult{
		Owner:             tbl.Owner,
		Columns:           tbl.Columns,
		NumClusteringCols: tbl.NumClusteringCols,
		Format:            tbl.Format,
		Storage:           tbl.Storage,
	}, nil
}

// ApplyCatalogUpdate feeds a broadcast batch to the Reconciler inline
// and returns its ack. Callers (in-process, or a gRPC caller via
// server.go's catalog_update operation) MUST, on ErrServiceIDChanged, request a
// full resync — the Reconciler has already flushed the store by the
// time this returns the error.
func (f *Facade) ApplyCatalogUpdate(req CatalogUpdateRequest) (CatalogUpdateResponse, error) {
	done := track("catalog_update")
	ack, err := f.reconciler.ApplyUpdate(req.toBatch())
	if err != nil {
		done("rejected")
		return CatalogUpdateResponse{}, err
	}
	done("ok")
	return CatalogUpdateResponse{CatalogServiceID: serviceIDToWire(ack.ServiceID)}, nil
}

// ExecMetadataOp answers the four client-protocol metadata operations
// (get-schemas, get-tables, get-columns, get-types) as row sets, the
// shape JDBC/ODBC metadata calls expect.
func (f *Facade) ExecMetadataOp(req MetadataOpRequest) (MetadataOpResponse, error) {
	done := track("exec_metadata_op")
	switch req.Op {
	case MetadataOpGetSchemas:
		dbs, err := f.GetDbNames(GetDbsParams{Pattern: req.Pattern, Principal: req.Principal})
		if err != nil {
			done("error")
			return MetadataOpResponse{}, err
		}
		rows := make([]map[string]string, 0, len(dbs.Dbs))
		for _, name := range dbs.Dbs {
			rows = append(rows, map[string]string{"TABLE_SCHEM": name})
		}
		done("ok")
		return MetadataOpResponse{Rows: rows}, nil

	case MetadataOpGetTables:
		tbls, err := f.GetTableNames(GetTablesParams{Db: req.Db, Pattern: req.Pattern, Principal: req.Principal})
		if err != nil {
			done("error")
			return MetadataOpResponse{}, err
		}
		rows := make([]map[string]string, 0, len(tbls.Tables))
		for _, name := range tbls.Tables {
			rows = append(rows, map[string]string{"TABLE_SCHEM": req.Db, "TABLE_NAME": name})
		}
		done("ok")
		return MetadataOpResponse{Rows: rows}, nil

	case MetadataOpGetColumns:
		desc, err := f.DescribeTable(DescribeTableParams{Db: req.Db, Table: req.Table, Principal: req.Principal})
		if err != nil {
			done("error")
			return MetadataOpResponse{}, err
		}
		rows := make([]map[string]string, 0, len(desc.Columns))
		for _, c := range desc.Columns {
			rows = append(rows, map[string]string{"COLUMN_NAME": c.Name, "TYPE_NAME": c.Type, "REMARKS": c.Comment})
		}
		done("ok")
		return MetadataOpResponse{Rows: rows}, nil

	case MetadataOpGetTypes:
		done("ok")
		return MetadataOpResponse{Rows: typeRows}, nil

	default:
		done("unsupported")
		return MetadataOpResponse{}, catalog.NewUnsupportedOperation("unrecognized metadata op %d", req.Op)
	}
}

var typeRows = []map[string]string{
	{"TYPE_NAME": "BOOLEAN"}, {"TYPE_NAME": "TINYINT"}, {"TYPE_NAME": "SMALLINT"},
	{"TYPE_NAME": "INT"}, {"TYPE_NAME": "BIGINT"}, {"TYPE_NAME": "FLOAT"},
	{"TYPE_NAME": "DOUBLE"}, {"TYPE_NAME": "STRING"}, {"TYPE_NAME": "TIMESTAMP"},
}

// ResetTable invalidates db.table and reloads it from the MetaStore,
// feeding the result back in as a direct update at a version minted by
// nextVersion.
func (f *Facade) ResetTable(db, table, principal string) error {
	done := track("reset_table")
	if err := f.checkAccess(principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeAll, Target: authz.TableTarget{Db: db, Table: table}}); err != nil {
		done("denied")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), metastore.DefaultOperationTimeout)
	defer cancel()
	lease, err := f.pool.Acquire(ctx)
	if err != nil {
		done("error")
		return catalog.NewInternal(err, "acquire metastore lease")
	}
	defer lease.Release()

	rec, err := lease.Client.GetTable(ctx, db, table)
	version := f.nextVersion()
	var obj catalog.Object
	if err != nil {
		log.WithTable(log.WithDatabase(f.logger, db), table).Warn().Err(err).Msg("table reload from metastore failed, caching as incomplete")
		obj = catalog.Object{Kind: catalog.KindTable, Db: db, Name: table, Version: version, LoadError: fmt.Errorf("reload %s.%s from metastore: %w", db, table, err)}
	} else {
		obj = tableRecordToObject(rec, version)
	}

	_, aerr := f.reconciler.ApplyUpdate(catalog.Batch{
		Updated:   []catalog.Object{obj},
		ServiceID: f.reconciler.ServiceID(),
	})
	if aerr != nil {
		done("error")
		return aerr
	}
	done("ok")
	return nil
}

// ResetCatalog invalidates the entire cache and requests a full resync,
// modeled the same way a detected service-ID change is handled: the
// store is cleared and the watermark reset, and the caller is expected to
// re-subscribe. The flush happens only while a service identity is
// installed; see the comment in the body.
func (f *Facade) ResetCatalog() error {
	done := track("reset_catalog")
	_, err := f.reconciler.ApplyUpdate(catalog.Batch{ServiceID: catalog.NoService})
	// A reset presents as an identity change away from whatever is
	// currently installed. When no identity is installed yet (first
	// boot, or right after an earlier reset) NoService matches it, so the
	// empty batch is applied as-is: nothing is flushed and the readiness
	// flag is set.
	if err != nil && err != catalog.ErrServiceIDChanged {
		done("error")
		return err
	}
	done("ok")
	return nil
}

// CreateExecRequest delegates statement analysis to the injected
// Planner. Catalog reads performed during planning use the Reconciler's
// reader methods directly, which already take the Catalog lock's shared
// half for the duration of each lookup.
func (f *Facade) CreateExecRequest(req ClientRequest) (ExecRequest, error) {
	done := track("create_exec_request")
	if f.planner == nil {
		done("unsupported")
		return ExecRequest{}, catalog.NewUnsupportedOperation("no planner configured")
	}
	out, err := f.planner.CreateExecRequest(req)
	if err != nil {
		done("error")
		return ExecRequest{}, err
	}
	done("ok")
	return out, nil
}

// Explain delegates to the Planner the same way CreateExecRequest does.
func (f *Facade) Explain(req ClientRequest) (string, error) {
	done := track("explain")
	if f.planner == nil {
		done("unsupported")
		return "", catalog.NewUnsupportedOperation("no planner configured")
	}
	out, err := f.planner.Explain(req)
	if err != nil {
		done("error")
		return "", err
	}
	done("ok")
	return out, nil
}

// nextVersion mints a version for a direct update one past the higher of
// the current watermark and the last version it minted, so successive
// direct updates between broadcasts get strictly increasing versions —
// direct DDL always supplies a non-zero explicit version, distinct from
// the heartbeat-inherits-batch-version rule broadcast removals use.
func (f *Facade) nextVersion() catalog.Version {
	f.versionMu.Lock()
	defer f.versionMu.Unlock()
	v := f.reconciler.LastSyncedVersion()
	if f.lastIssued > v {
		v = f.lastIssued
	}
	v++
	f.lastIssued = v
	return v
}

func tableRecordToObject(rec metastore.TableRecord, version catalog.Version) catalog.Object {
	cols := make([]catalog.Column, len(rec.Columns))
	for i, c := range rec.Columns {
		cols[i] = catalog.Column{Name: c.Name, Type: c.Type, Comment: c.Comment}
	}
	return catalog.Object{
		Kind:    catalog.KindTable,
		Version: version,
		Db:      rec.Db,
		Name:    rec.Name,
		Owner:   rec.Owner,
		Columns: cols,
		Format:  catalog.FormatHDFSText,
		Storage: &catalog.StorageDescriptor{Location: rec.Location, FileFormat: rec.FileFormat},
	}
}

func (f *Facade) leaseMetastore(ctx context.Context) (*metastore.Lease, error) {
	lease, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, catalog.NewInternal(err, "acquire metastore lease")
	}
	return lease, nil
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), metastore.DefaultOperationTimeout)
}
