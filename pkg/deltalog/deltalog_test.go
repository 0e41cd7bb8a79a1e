package deltalog

import (
	"testing"

	"github.com/cuemby/catalogd/pkg/catalog"
	"github.com/stretchr/testify/assert"
)

func TestWasRemovedAfter(t *testing.T) {
	l := New()
	key := catalog.NewTableKey(catalog.KindTable, "sales", "orders")

	assert.False(t, l.WasRemovedAfter(key, 0))

	l.RecordDrop(key, catalog.KindTable, 12)
	assert.True(t, l.WasRemovedAfter(key, 11))
	assert.False(t, l.WasRemovedAfter(key, 12))
	assert.False(t, l.WasRemovedAfter(key, 13))
}

func TestRecordDropOverwritesWithLaterVersion(t *testing.T) {
	l := New()
	key := catalog.NewDatabaseKey("sales")

	l.RecordDrop(key, catalog.KindDatabase, 5)
	l.RecordDrop(key, catalog.KindDatabase, 9)

	assert.True(t, l.WasRemovedAfter(key, 8))
	assert.False(t, l.WasRemovedAfter(key, 9))
	assert.Equal(t, 1, l.Len())
}

func TestGarbageCollect(t *testing.T) {
	l := New()
	a := catalog.NewTableKey(catalog.KindTable, "sales", "orders")
	b := catalog.NewTableKey(catalog.KindTable, "sales", "returns")

	l.RecordDrop(a, catalog.KindTable, 12)
	l.RecordDrop(b, catalog.KindTable, 20)

	l.GarbageCollect(15)
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.WasRemovedAfter(a, 0))
	assert.True(t, l.WasRemovedAfter(b, 15))
}

func TestGarbageCollectBelowEveryEntryIsNoop(t *testing.T) {
	l := New()
	key := catalog.NewTableKey(catalog.KindTable, "sales", "orders")
	l.RecordDrop(key, catalog.KindTable, 12)

	l.GarbageCollect(1)
	assert.Equal(t, 1, l.Len())
}

func TestLenEmpty(t *testing.T) {
	l := New()
	assert.Equal(t, 0, l.Len())
}
