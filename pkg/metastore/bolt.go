package metastore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"
)

var (
	bucketDatabases = []byte("databases")
	bucketTables    = []byte("tables")
)

// BoltClient is a fake Hive-compatible metastore backed by a local BoltDB
// file. It exists to give the facade's DDL-fanout path something real to
// write through to under the serve command (the facade tests use an
// in-memory fake, and the demo uses no metastore); it is not the cache's
// own state, which stays memory-only.
type BoltClient struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a BoltDB file at path and
// ensures its two buckets exist.
func OpenBolt(path string) (*BoltClient, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open metastore db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketDatabases); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketTables)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init metastore buckets: %w", err)
	}
	return &BoltClient{db: db}, nil
}

func tableKey(db, name string) []byte {
	return []byte(strings.ToLower(db) + "\x00" + strings.ToLower(name))
}

func (c *BoltClient) CreateDatabase(_ context.Context, db DatabaseRecord) error {
	data, err := json.Marshal(db)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDatabases).Put([]byte(strings.ToLower(db.Name)), data)
	})
}

func (c *BoltClient) GetDatabase(_ context.Context, name string) (DatabaseRecord, error) {
	var rec DatabaseRecord
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDatabases).Get([]byte(strings.ToLower(name)))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (c *BoltClient) DropDatabase(_ context.Context, name string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDatabases).Delete([]byte(strings.ToLower(name)))
	})
}

func (c *BoltClient) ListDatabases(_ context.Context) ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDatabases).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func (c *BoltClient) CreateTable(_ context.Context, tbl TableRecord) error {
	data, err := json.Marshal(tbl)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTables).Put(tableKey(tbl.Db, tbl.Name), data)
	})
}

func (c *BoltClient) GetTable(_ context.Context, db, name string) (TableRecord, error) {
	var rec TableRecord
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTables).Get(tableKey(db, name))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (c *BoltClient) DropTable(_ context.Context, db, name string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTables).Delete(tableKey(db, name))
	})
}

// UpdateTable overwrites the record at (tbl.Db, tbl.Name). The Bolt fake
// has no separate update path from CreateTable's unconditional Put, but
// the contract keeps the two names distinct since a real metastore does
// treat "create new" and "alter existing" differently.
func (c *BoltClient) UpdateTable(ctx context.Context, tbl TableRecord) error {
	return c.CreateTable(ctx, tbl)
}

// RenameTable moves the table record from (db, name) to (newDb, newName).
func (c *BoltClient) RenameTable(_ context.Context, db, name, newDb, newName string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketTables)
		oldKey := tableKey(db, name)
		data := bucket.Get(oldKey)
		if data == nil {
			return ErrNotFound
		}
		var rec TableRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		rec.Db = newDb
		rec.Name = newName
		newData, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := bucket.Delete(oldKey); err != nil {
			return err
		}
		return bucket.Put(tableKey(newDb, newName), newData)
	})
}

func (c *BoltClient) ListTables(_ context.Context, db string) ([]string, error) {
	prefix := []byte(strings.ToLower(db) + "\x00")
	var names []string
	err := c.db.View(func(tx *bbolt.Tx) error {
		cur := tx.Bucket(bucketTables).Cursor()
		for k, _ := cur.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = cur.Next() {
			names = append(names, strings.TrimPrefix(string(k), string(prefix)))
		}
		return nil
	})
	return names, err
}

func (c *BoltClient) Close() error {
	return c.db.Close()
}
