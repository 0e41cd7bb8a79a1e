package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetDatabaseCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("Sales", "alice", "", "", 1))

	require.NotNil(t, s.GetDatabase("SALES"))
	assert.Equal(t, "alice", s.GetDatabase("sales").Owner)
}

func TestStorePutTableRequiresParentDatabase(t *testing.T) {
	s := NewStore()
	ok := s.PutTable("sales", NewTable("sales", "orders", nil, 0, 1, FormatHDFSText, nil))
	assert.False(t, ok)
	assert.False(t, s.ContainsTable("sales", "orders"))

	s.PutDatabase(NewDatabase("sales", "", "", "", 1))
	ok = s.PutTable("sales", NewTable("sales", "orders", nil, 0, 1, FormatHDFSText, nil))
	assert.True(t, ok)
	assert.True(t, s.ContainsTable("sales", "orders"))
}

func TestStorePutDatabaseCarriesForwardChildren(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("sales", "alice", "", "", 1))
	s.PutTable("sales", NewTable("sales", "orders", nil, 0, 1, FormatHDFSText, nil))

	// A metadata-only update (new owner) must not drop the existing table.
	s.PutDatabase(NewDatabase("sales", "bob", "", "", 2))

	assert.Equal(t, "bob", s.GetDatabase("sales").Owner)
	assert.True(t, s.ContainsTable("sales", "orders"))
}

func TestStoreListDatabaseNamesPatternAndOrder(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"default", "sales", "sales_archive", "SalesQA"} {
		s.PutDatabase(NewDatabase(name, "", "", "", 1))
	}

	got := s.ListDatabaseNames("sales*")
	assert.Equal(t, []string{"sales", "sales_archive", "salesqa"}, got)
}

func TestStoreListTableNamesUnknownDatabaseReturnsNil(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.ListTableNames("missing", "*"))
}

func TestStoreRemoveIsIdempotent(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("sales", "", "", "", 1))
	s.RemoveTable("sales", "nonexistent")
	s.RemoveDatabase("missing")
	s.RemoveDatabase("sales")
	s.RemoveDatabase("sales")
	assert.Nil(t, s.GetDatabase("sales"))
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("sales", "", "", "", 1))
	s.Clear()
	assert.Equal(t, 0, s.DatabaseCount())
	assert.Nil(t, s.GetDatabase("sales"))
}

func TestStoreCounts(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("sales", "", "", "", 1))
	s.PutDatabase(NewDatabase("ops", "", "", "", 1))
	s.PutTable("sales", NewTable("sales", "orders", nil, 0, 1, FormatHDFSText, nil))
	s.PutTable("sales", NewTable("sales", "returns", nil, 0, 1, FormatHDFSText, nil))

	assert.Equal(t, 2, s.DatabaseCount())
	assert.Equal(t, 2, s.TableCount())
}

func TestStoreFunctionLookup(t *testing.T) {
	s := NewStore()
	s.PutDatabase(NewDatabase("sales", "", "", "", 1))
	ok := s.PutFunction("sales", &Function{Signature: "f(int)", Db: "sales", Version: 1})
	require.True(t, ok)
	assert.NotNil(t, s.GetFunction("sales", "f(int)"))

	s.RemoveFunction("sales", "f(int)")
	assert.Nil(t, s.GetFunction("sales", "f(int)"))
}
