package facade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/catalogd/pkg/authz"
	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/cuemby/catalogd/pkg/metastore"
	"github.com/cuemby/catalogd/pkg/policyreload"
	"github.com/cuemby/catalogd/pkg/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetastore is an in-memory metastore.Client for tests, avoiding a
// BoltDB file on disk.
type fakeMetastore struct {
	dbs    map[string]metastore.DatabaseRecord
	tables map[string]metastore.TableRecord
}

func newFakeMetastore() *fakeMetastore {
	return &fakeMetastore{dbs: map[string]metastore.DatabaseRecord{}, tables: map[string]metastore.TableRecord{}}
}

func tkey(db, name string) string { return db + "." + name }

func (m *fakeMetastore) CreateDatabase(_ context.Context, db metastore.DatabaseRecord) error {
	m.dbs[db.Name] = db
	return nil
}
func (m *fakeMetastore) GetDatabase(_ context.Context, name string) (metastore.DatabaseRecord, error) {
	rec, ok := m.dbs[name]
	if !ok {
		return metastore.DatabaseRecord{}, metastore.ErrNotFound
	}
	return rec, nil
}
func (m *fakeMetastore) DropDatabase(_ context.Context, name string) error {
	delete(m.dbs, name)
	return nil
}
func (m *fakeMetastore) ListDatabases(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.dbs))
	for n := range m.dbs {
		names = append(names, n)
	}
	return names, nil
}
func (m *fakeMetastore) CreateTable(_ context.Context, tbl metastore.TableRecord) error {
	m.tables[tkey(tbl.Db, tbl.Name)] = tbl
	return nil
}
func (m *fakeMetastore) GetTable(_ context.Context, db, name string) (metastore.TableRecord, error) {
	rec, ok := m.tables[tkey(db, name)]
	if !ok {
		return metastore.TableRecord{}, metastore.ErrNotFound
	}
	return rec, nil
}
func (m *fakeMetastore) DropTable(_ context.Context, db, name string) error {
	delete(m.tables, tkey(db, name))
	return nil
}
func (m *fakeMetastore) ListTables(_ context.Context, db string) ([]string, error) {
	var names []string
	for k, t := range m.tables {
		if t.Db == db {
			names = append(names, k)
		}
	}
	return names, nil
}
func (m *fakeMetastore) UpdateTable(_ context.Context, tbl metastore.TableRecord) error {
	m.tables[tkey(tbl.Db, tbl.Name)] = tbl
	return nil
}
func (m *fakeMetastore) RenameTable(_ context.Context, db, name, newDb, newName string) error {
	rec, ok := m.tables[tkey(db, name)]
	if !ok {
		return metastore.ErrNotFound
	}
	delete(m.tables, tkey(db, name))
	rec.Db = newDb
	rec.Name = newName
	m.tables[tkey(newDb, newName)] = rec
	return nil
}
func (m *fakeMetastore) Close() error { return nil }

func writePolicy(t *testing.T, grants string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(grants), 0o600))
	return path
}

func newTestFacade(t *testing.T, authEnabled bool, grants string) (*Facade, *reconciler.Reconciler) {
	t.Helper()
	rec := reconciler.NewReconciler()
	policyPath := writePolicy(t, grants)
	reloader, err := policyreload.New(policyPath, 0)
	require.NoError(t, err)
	pool := metastore.NewPool(newFakeMetastore(), 4)
	return New(rec, reloader, authEnabled, pool, nil), rec
}

func seedFirstBoot(t *testing.T, rec *reconciler.Reconciler) {
	t.Helper()
	_, err := rec.ApplyUpdate(catalog.Batch{
		ServiceID: catalog.ServiceID{Hi: 1, Lo: 1},
		Updated: []catalog.Object{
			{Kind: catalog.KindCatalogMarker, Version: 10},
			{Kind: catalog.KindDatabase, Db: "sales", Version: 8},
			{Kind: catalog.KindTable, Db: "sales", Name: "orders", Version: 9,
				Columns: []catalog.Column{{Name: "id", Type: "BIGINT"}, {Name: "amount", Type: "DOUBLE"}},
			},
		},
	})
	require.NoError(t, err)
}

func TestFacade_GetDbNames_FiltersByPrivilege(t *testing.T) {
	f, rec := newTestFacade(t, true, `
grants:
  - principal: alice
    privilege: VIEW_METADATA
    db: sales
`)
	_, err := rec.ApplyUpdate(catalog.Batch{
		ServiceID: catalog.ServiceID{Hi: 1},
		Updated: []catalog.Object{
			{Kind: catalog.KindCatalogMarker, Version: 1},
			{Kind: catalog.KindDatabase, Db: "default", Version: 1},
			{Kind: catalog.KindDatabase, Db: "sales", Version: 1},
			{Kind: catalog.KindDatabase, Db: "sales_archive", Version: 1},
			{Kind: catalog.KindDatabase, Db: "SalesQA", Version: 1},
		},
	})
	require.NoError(t, err)

	result, err := f.GetDbNames(GetDbsParams{Pattern: "sales*", Principal: "alice"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sales"}, result.Dbs)
}

func TestFacade_GetDbNames_AuthDisabled_NoFilter(t *testing.T) {
	f, rec := newTestFacade(t, false, `grants: []`)
	_, err := rec.ApplyUpdate(catalog.Batch{
		ServiceID: catalog.ServiceID{Hi: 1},
		Updated: []catalog.Object{
			{Kind: catalog.KindCatalogMarker, Version: 1},
			{Kind: catalog.KindDatabase, Db: "sales", Version: 1},
			{Kind: catalog.KindDatabase, Db: "sales_archive", Version: 1},
		},
	})
	require.NoError(t, err)

	result, err := f.GetDbNames(GetDbsParams{Pattern: "sales*", Principal: "nobody"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sales", "sales_archive"}, result.Dbs)
}

func TestFacade_DescribeTable_IncompleteReraises(t *testing.T) {
	f, rec := newTestFacade(t, false, `grants: []`)
	_, err := rec.ApplyUpdate(catalog.Batch{
		ServiceID: catalog.ServiceID{Hi: 1},
		Updated: []catalog.Object{
			{Kind: catalog.KindCatalogMarker, Version: 1},
			{Kind: catalog.KindDatabase, Db: "sales", Version: 1},
			{Kind: catalog.KindTable, Db: "sales", Name: "bad", Version: 1, LoadError: assertErr{}},
		},
	})
	require.NoError(t, err)

	// The table is visible at list time...
	names := f.reconciler.ListTableNames("sales", "")
	assert.Contains(t, names, "bad")

	// ...but describing it re-raises the load failure.
	_, err = f.DescribeTable(DescribeTableParams{Db: "sales", Table: "bad"})
	require.Error(t, err)
	var cerr *catalog.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, catalog.CodeTableLoading, cerr.Code)
}

type assertErr struct{}

func (assertErr) Error() string { return "underlying load failure" }

func TestFacade_CreateAndDropDatabase(t *testing.T) {
	f, _ := newTestFacade(t, true, `
grants:
  - principal: admin
    privilege: ALL
`)
	require.NoError(t, f.CreateDatabase(CreateDbParams{Db: "marketing", Owner: "admin", Principal: "admin"}))
	assert.NotNil(t, f.reconciler.GetDatabase("marketing"))

	err := f.CreateDatabase(CreateDbParams{Db: "marketing", Principal: "admin"})
	require.Error(t, err)
	var cerr *catalog.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, catalog.CodeAlreadyExists, cerr.Code)

	require.NoError(t, f.DropDatabase(DropDbParams{Db: "marketing", Principal: "admin"}))
	assert.Nil(t, f.reconciler.GetDatabase("marketing"))
}

func TestFacade_CreateDatabase_Denied(t *testing.T) {
	f, _ := newTestFacade(t, true, `grants: []`)
	err := f.CreateDatabase(CreateDbParams{Db: "marketing", Principal: "mallory"})
	require.Error(t, err)
	var cerr *catalog.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, catalog.CodeAuthorization, cerr.Code)
}

func TestFacade_AlterTable_RenameDropsOldAddsNew(t *testing.T) {
	f, rec := newTestFacade(t, true, `
grants:
  - principal: admin
    privilege: ALL
`)
	seedFirstBoot(t, rec)
	require.NoError(t, f.CreateDatabase(CreateDbParams{Db: "archive", Principal: "admin"}))

	err := f.AlterTable(AlterTableParams{
		Kind: AlterRenameTable, Db: "sales", Table: "orders", Principal: "admin",
		RenameTable: &RenameTableParams{NewDb: "archive", NewTable: "old_orders"},
	})
	require.NoError(t, err)

	assert.Nil(t, f.reconciler.GetTable("sales", "orders"))
	renamed := f.reconciler.GetTable("archive", "old_orders")
	require.NotNil(t, renamed)
	assert.Len(t, renamed.Columns, 2)
}

func TestFacade_ResetCatalog_FlushesStore(t *testing.T) {
	f, rec := newTestFacade(t, false, `grants: []`)
	seedFirstBoot(t, rec)
	require.NotNil(t, rec.GetDatabase("sales"))

	require.NoError(t, f.ResetCatalog())
	assert.Nil(t, rec.GetDatabase("sales"))
	assert.False(t, rec.Ready())
	assert.True(t, rec.ServiceID().IsSentinel())
}

func TestFacade_ExecMetadataOp_GetColumns(t *testing.T) {
	f, rec := newTestFacade(t, false, `grants: []`)
	seedFirstBoot(t, rec)

	resp, err := f.ExecMetadataOp(MetadataOpRequest{Op: MetadataOpGetColumns, Db: "sales", Table: "orders"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "id", resp.Rows[0]["COLUMN_NAME"])
}

func TestFacade_Planner_Unconfigured(t *testing.T) {
	f, _ := newTestFacade(t, false, `grants: []`)
	_, err := f.CreateExecRequest(ClientRequest{Stmt: "SELECT 1"})
	require.Error(t, err)
	var cerr *catalog.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, catalog.CodeUnsupportedOperation, cerr.Code)
}

var _ = authz.PrivilegeAll
