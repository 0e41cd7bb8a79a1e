package facade

import (
	"context"
	"strings"

	"github.com/cuemby/catalogd/pkg/authz"
	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/metastore"
)

// Each DDL method below is a thin fan-out orchestrator: validate
// params, call the metastore, synthesize a direct
// CatalogObject update at a version minted by nextVersion (strictly
// above both the watermark and every version this Facade minted
// before), and feed it to the Reconciler inline so the ack (and any
// ErrServiceIDChanged) is available to the caller before it returns.

// CreateDatabase drives CREATE DATABASE.
func (f *Facade) CreateDatabase(params CreateDbParams) error {
	done := track("create_database")
	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeCreate, Target: authz.ServerTarget{}}); err != nil {
		done("denied")
		return err
	}

	if f.reconciler.GetDatabase(params.Db) != nil {
		if params.IfNotExists {
			done("noop")
			return nil
		}
		done("exists")
		return catalog.NewAlreadyExists(catalog.KindDatabase, "", params.Db)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	lease, err := f.leaseMetastore(ctx)
	if err != nil {
		done("error")
		return err
	}
	defer lease.Release()

	rec := metastore.DatabaseRecord{Name: params.Db, Owner: params.Owner, Comment: params.Comment, Location: params.Location}
	if err := lease.Client.CreateDatabase(ctx, rec); err != nil {
		done("error")
		return catalog.NewInternal(err, "create database %q in metastore", params.Db)
	}

	obj := catalog.Object{Kind: catalog.KindDatabase, Version: f.nextVersion(), Db: params.Db, Owner: params.Owner, Comment: params.Comment, Location: params.Location}
	if _, err := f.reconciler.ApplyUpdate(catalog.Batch{Updated: []catalog.Object{obj}, ServiceID: f.reconciler.ServiceID()}); err != nil {
		done("error")
		return err
	}
	done("ok")
	return nil
}

// DropDatabase drives DROP DATABASE.
func (f *Facade) DropDatabase(params DropDbParams) error {
	done := track("drop_database")
	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeDrop, Target: authz.DatabaseTarget{Db: params.Db}}); err != nil {
		done("denied")
		return err
	}

	db := f.reconciler.GetDatabase(params.Db)
	if db == nil {
		if params.IfExists {
			done("noop")
			return nil
		}
		done("not_found")
		return catalog.NewDatabaseNotFound(params.Db)
	}
	tables := f.reconciler.ListTableNames(params.Db, "")
	if !params.Cascade && len(tables) > 0 {
		done("invalid")
		return catalog.NewInvalidOperation("database %q is not empty; use Cascade to drop its tables too", params.Db)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	lease, err := f.leaseMetastore(ctx)
	if err != nil {
		done("error")
		return err
	}
	defer lease.Release()

	if err := lease.Client.DropDatabase(ctx, params.Db); err != nil {
		done("error")
		return catalog.NewInternal(err, "drop database %q in metastore", params.Db)
	}

	version := f.nextVersion()
	removed := []catalog.Object{{Kind: catalog.KindDatabase, Db: params.Db, Version: version}}
	for _, name := range tables {
		removed = append(removed, catalog.Object{Kind: catalog.KindTable, Db: params.Db, Name: name, Version: version})
	}
	if _, err := f.reconciler.ApplyUpdate(catalog.Batch{Removed: removed, ServiceID: f.reconciler.ServiceID()}); err != nil {
		done("error")
		return err
	}
	done("ok")
	return nil
}

// CreateTable drives CREATE TABLE.
func (f *Facade) CreateTable(params CreateTableParams) error {
	done := track("create_table")
	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeCreate, Target: authz.DatabaseTarget{Db: params.Db}}); err != nil {
		done("denied")
		return err
	}

	if f.reconciler.GetDatabase(params.Db) == nil {
		done("not_found")
		return catalog.NewDatabaseNotFound(params.Db)
	}
	if f.reconciler.GetTable(params.Db, params.Table) != nil {
		if params.IfNotExists {
			done("noop")
			return nil
		}
		done("exists")
		return catalog.NewAlreadyExists(catalog.KindTable, params.Db, params.Table)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	lease, err := f.leaseMetastore(ctx)
	if err != nil {
		done("error")
		return err
	}
	defer lease.Release()

	mrec := metastore.TableRecord{Db: params.Db, Name: params.Table, Owner: params.Owner, FileFormat: params.Format.String()}
	if params.Storage != nil {
		mrec.Location = params.Storage.Location
	}
	for _, c := range params.Columns {
		mrec.Columns = append(mrec.Columns, metastore.ColumnRecord{Name: c.Name, Type: c.Type, Comment: c.Comment})
	}
	if err := lease.Client.CreateTable(ctx, mrec); err != nil {
		done("error")
		return catalog.NewInternal(err, "create table %q.%q in metastore", params.Db, params.Table)
	}

	obj := catalog.Object{
		Kind: catalog.KindTable, Version: f.nextVersion(), Db: params.Db, Name: params.Table,
		Owner: params.Owner, Columns: params.Columns, NumClusteringCols: params.NumClusteringCols,
		Format: params.Format, Storage: params.Storage,
	}
	if _, err := f.reconciler.ApplyUpdate(catalog.Batch{Updated: []catalog.Object{obj}, ServiceID: f.reconciler.ServiceID()}); err != nil {
		done("error")
		return err
	}
	done("ok")
	return nil
}

// CreateTableLike drives CREATE TABLE ... LIKE, copying schema from the
// source table already resolved in the cache.
func (f *Facade) CreateTableLike(params CreateTableLikeParams) error {
	done := track("create_table_like")
	src := f.reconciler.GetTable(params.SrcDb, params.SrcTable)
	if src == nil {
		done("not_found")
		return catalog.NewTableNotFound(params.SrcDb, params.SrcTable)
	}
	if src.Incomplete() {
		done("incomplete")
		return catalog.NewTableLoading(params.SrcDb, params.SrcTable, src.LoadError)
	}
	done("ok")
	return f.CreateTable(CreateTableParams{
		Db: params.Db, Table: params.Table, Owner: params.Owner,
		Columns: src.Columns, NumClusteringCols: src.NumClusteringCols,
		Format: src.Format, Storage: src.Storage,
		Principal: params.Principal, IfNotExists: params.IfNotExists,
	})
}

// DropTable drives DROP TABLE.
func (f *Facade) DropTable(params DropTableParams) error {
	done := track("drop_table")
	if err := f.checkAccess(params.Principal, authz.PrivilegeRequest{Privilege: authz.PrivilegeDrop, Target: authz.TableTarget{Db: params.Db, Table: params.Table}}); err != nil {
		done("denied")
		return err
	}

	if f.reconciler.GetTable(params.Db, params.Table) == nil {
		if params.IfExists {
			done("noop")
			return nil
		}
		done("not_found")
		return catalog.NewTableNotFound(params.Db, params.Table)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	lease, err := f.leaseMetastore(ctx)
	if err != nil {
		done("error")
		return err
	}
	defer lease.Release()

	if err := lease.Client.DropTable(ctx, params.Db, params.Table); err != nil {
		done("error")
		return catalog.NewInternal(err, "drop table %q.%q in metastore", params.Db, params.Table)
	}

	obj := catalog.Object{Kind: catalog.KindTable, Db: params.Db, Name: params.Table, Version: f.nextVersion()}
	if _, err := f.reconciler.ApplyUpdate(catalog.Batch{Removed: []catalog.Object{obj}, ServiceID: f.reconciler.ServiceID()}); err != nil {
		done("error")
		return err
	}
	done("ok")
	return nil
}

// UpdateMetastore forces a reload of one table's definition from the
// MetaStore — the same path ResetTable takes, exposed as its own named
// operation.
func (f *Facade) UpdateMetastore(params UpdateMetastoreParams) error {
	return f.ResetTable(params.Db, params.Table, params.Principal)
}

// AlterTable dispatches on params.Kind. RENAME_TABLE is modeled as
// drop-of-old + add-of-new under one shared version in a single batch
// (the design decision is recorded in DESIGN.md); every other kind
// replaces the table record wholesale with the requested change
// applied, also under a freshly minted version.
func (f *Facade) AlterTable(params AlterTableParams) error {
	done := track("alter_table:" + params.Kind.String())

	authReq := authz.PrivilegeRequest{Privilege: authz.PrivilegeAll, Target: authz.TableTarget{Db: params.Db, Table: params.Table}}
	if params.Kind == AlterRenameTable {
		authReq = authz.PrivilegeRequest{
			Privilege: authz.PrivilegeAny,
			Target: authz.AllOfTarget{
				Privileges: []authz.Privilege{authz.PrivilegeDrop, authz.PrivilegeCreate},
				Scope:      authz.DatabaseTarget{Db: params.Db},
			},
		}
	}
	if err := f.checkAccess(params.Principal, authReq); err != nil {
		done("denied")
		return err
	}

	existing := f.reconciler.GetTable(params.Db, params.Table)
	if existing == nil {
		done("not_found")
		return catalog.NewTableNotFound(params.Db, params.Table)
	}
	if existing.Incomplete() {
		done("incomplete")
		return catalog.NewTableLoading(params.Db, params.Table, existing.LoadError)
	}

	switch params.Kind {
	case AlterRenameTable, AlterAddReplaceColumns, AlterDropColumn, AlterChangeColumn,
		AlterSetFileFormat, AlterSetLocation, AlterAddPartition, AlterDropPartition:
	default:
		done("unsupported")
		return catalog.NewUnsupportedOperation("unrecognized alter kind %v", params.Kind)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	lease, err := f.leaseMetastore(ctx)
	if err != nil {
		done("error")
		return err
	}
	defer lease.Release()

	version := f.nextVersion()
	serviceID := f.reconciler.ServiceID()

	switch params.Kind {
	case AlterRenameTable:
		if params.RenameTable == nil {
			done("invalid")
			return catalog.NewInvalidOperation("RENAME_TABLE requires RenameTable params")
		}
		if f.reconciler.GetDatabase(params.RenameTable.NewDb) == nil {
			done("not_found")
			return catalog.NewDatabaseNotFound(params.RenameTable.NewDb)
		}
		if err := lease.Client.RenameTable(ctx, params.Db, params.Table, params.RenameTable.NewDb, params.RenameTable.NewTable); err != nil {
			done("error")
			return catalog.NewInternal(err, "rename table %q.%q to %q.%q in metastore", params.Db, params.Table, params.RenameTable.NewDb, params.RenameTable.NewTable)
		}
		renamed := *existing
		renamed.Db = params.RenameTable.NewDb
		renamed.Name = params.RenameTable.NewTable
		renamed.Version = version
		batch := catalog.Batch{
			Removed:   []catalog.Object{{Kind: catalog.KindTable, Db: params.Db, Name: params.Table, Version: version}},
			Updated:   []catalog.Object{tableToObject(&renamed)},
			ServiceID: serviceID,
		}
		if _, err := f.reconciler.ApplyUpdate(batch); err != nil {
			done("error")
			return err
		}

	case AlterAddReplaceColumns:
		if params.AddReplaceColumns == nil {
			done("invalid")
			return catalog.NewInvalidOperation("ADD_REPLACE_COLUMNS requires AddReplaceColumns params")
		}
		replacement := *existing
		if params.AddReplaceColumns.Replace {
			replacement.Columns = params.AddReplaceColumns.Columns
		} else {
			replacement.Columns = append(append([]catalog.Column(nil), existing.Columns...), params.AddReplaceColumns.Columns...)
		}
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}

	case AlterDropColumn:
		if params.DropColumn == nil {
			done("invalid")
			return catalog.NewInvalidOperation("DROP_COLUMN requires DropColumn params")
		}
		replacement := *existing
		replacement.Columns = nil
		for _, c := range existing.Columns {
			if !strings.EqualFold(c.Name, params.DropColumn.Column) {
				replacement.Columns = append(replacement.Columns, c)
			}
		}
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}

	case AlterChangeColumn:
		if params.ChangeColumn == nil {
			done("invalid")
			return catalog.NewInvalidOperation("CHANGE_COLUMN requires ChangeColumn params")
		}
		replacement := *existing
		replacement.Columns = append([]catalog.Column(nil), existing.Columns...)
		found := false
		for i, c := range replacement.Columns {
			if strings.EqualFold(c.Name, params.ChangeColumn.OldName) {
				replacement.Columns[i] = params.ChangeColumn.NewCol
				found = true
				break
			}
		}
		if !found {
			done("not_found")
			return catalog.NewInvalidOperation("column %q not found on table %q.%q", params.ChangeColumn.OldName, params.Db, params.Table)
		}
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}

	case AlterSetFileFormat:
		if params.SetFileFormat == nil {
			done("invalid")
			return catalog.NewInvalidOperation("SET_FILE_FORMAT requires SetFileFormat params")
		}
		replacement := *existing
		replacement.Format = params.SetFileFormat.Format
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}

	case AlterSetLocation:
		if params.SetLocation == nil {
			done("invalid")
			return catalog.NewInvalidOperation("SET_LOCATION requires SetLocation params")
		}
		replacement := *existing
		storage := catalog.StorageDescriptor{}
		if existing.Storage != nil {
			storage = *existing.Storage
		}
		storage.Location = params.SetLocation.Location
		replacement.Storage = &storage
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}

	case AlterAddPartition, AlterDropPartition:
		// The partition spec in the params is not recorded: neither
		// catalog.Table nor metastore.TableRecord has a partition field.
		// The table record is written back through the metastore
		// unchanged and republished under the new version.
		replacement := *existing
		replacement.Version = version
		if err := f.replaceTable(ctx, lease.Client, &replacement, serviceID); err != nil {
			done("error")
			return err
		}
	}

	done("ok")
	return nil
}

// replaceTable writes the altered definition through to the metastore
// before publishing the direct cache update, so a later ResetTable/
// UpdateMetastore reload never regresses an applied alter.
func (f *Facade) replaceTable(ctx context.Context, client metastore.Client, t *catalog.Table, serviceID catalog.ServiceID) error {
	if err := client.UpdateTable(ctx, tableToMetastoreRecord(t)); err != nil {
		return catalog.NewInternal(err, "update table %q.%q in metastore", t.Db, t.Name)
	}
	_, err := f.reconciler.ApplyUpdate(catalog.Batch{Updated: []catalog.Object{tableToObject(t)}, ServiceID: serviceID})
	return err
}

func tableToMetastoreRecord(t *catalog.Table) metastore.TableRecord {
	rec := metastore.TableRecord{Db: t.Db, Name: t.Name, Owner: t.Owner, FileFormat: t.Format.String()}
	if t.Storage != nil {
		rec.Location = t.Storage.Location
	}
	for _, c := range t.Columns {
		rec.Columns = append(rec.Columns, metastore.ColumnRecord{Name: c.Name, Type: c.Type, Comment: c.Comment})
	}
	return rec
}

func tableToObject(t *catalog.Table) catalog.Object {
	return catalog.Object{
		Kind: catalog.KindTable, Version: t.Version, Db: t.Db, Name: t.Name, Owner: t.Owner,
		Columns: t.Columns, NumClusteringCols: t.NumClusteringCols, Format: t.Format, Storage: t.Storage,
	}
}

