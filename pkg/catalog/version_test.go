package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionValid(t *testing.T) {
	assert.False(t, NoVersion.Valid())
	assert.True(t, Version(1).Valid())
}

func TestVersionNewer(t *testing.T) {
	assert.True(t, Version(5).Newer(4))
	assert.False(t, Version(5).Newer(5))
	assert.False(t, Version(4).Newer(5))
}

func TestServiceIDSentinel(t *testing.T) {
	assert.True(t, NoService.IsSentinel())
	assert.False(t, ServiceID{Hi: 1}.IsSentinel())
	assert.False(t, ServiceID{Lo: 1}.IsSentinel())
}

func TestKeysCanonicalizeCase(t *testing.T) {
	assert.Equal(t, NewDatabaseKey("Sales"), NewDatabaseKey("sales"))
	assert.Equal(t, NewTableKey(KindTable, "Sales", "Orders"), NewTableKey(KindTable, "sales", "orders"))
	// TABLE and VIEW share one ObjectKey per §3: a dropped view and a
	// re-added table (or vice versa) of the same name must collide.
	assert.Equal(t, NewTableKey(KindTable, "sales", "orders"), NewTableKey(KindView, "sales", "orders"))
	// Function signatures are not lowercased, only the owning db name.
	assert.NotEqual(t, NewFunctionKey("sales", "F(INT)"), NewFunctionKey("sales", "f(int)"))
	assert.Equal(t, NewFunctionKey("Sales", "f(int)"), NewFunctionKey("sales", "f(int)"))
}

func TestKindIsTableLike(t *testing.T) {
	assert.True(t, KindTable.IsTableLike())
	assert.True(t, KindView.IsTableLike())
	assert.False(t, KindDatabase.IsTableLike())
	assert.False(t, KindFunction.IsTableLike())
	assert.False(t, KindCatalogMarker.IsTableLike())
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "sales", NewDatabaseKey("sales").String())
	assert.Equal(t, "sales.orders", NewTableKey(KindTable, "sales", "orders").String())
}
