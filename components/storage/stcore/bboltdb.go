package stcore

import (
	"bytes"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/open-control-systems/thingweb/components/status"
)

// NewBboltDB opens the bbolt database.
//
// Parameters:
//   - dbPath - database file path, created automatically if it doesn't exist.
//   - opts - bbolt options, nil means defaults.
//
// References:
//   - https://github.com/etcd-io/bbolt
func NewBboltDB(dbPath string, opts *bbolt.Options) (*bbolt.DB, error) {
	db, err := bbolt.Open(dbPath, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("bbolt: failed to open: path=%s: %w", dbPath, err)
	}

	return db, nil
}

// BboltDBBucket operates on a single bucket of the bbolt database.
type BboltDBBucket struct {
	db     *bbolt.DB
	bucket []byte
}

// NewBboltDBBucket is an initialization of BboltDBBucket.
//
// Parameters:
//   - db - bbolt database instance, owned by the caller.
//   - bucket - name of the bucket, created on the first write.
func NewBboltDBBucket(db *bbolt.DB, bucket string) *BboltDBBucket {
	return &BboltDBBucket{
		db:     db,
		bucket: []byte(bucket),
	}
}

// Read reads a blob from the bucket.
func (b *BboltDBBucket) Read(key string) (Blob, error) {
	blob := Blob{}

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return status.StatusNoData
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return status.StatusNoData
		}

		// Data is only valid for the transaction lifetime.
		blob.Data = bytes.Clone(data)

		return nil
	})
	if err != nil {
		return Blob{}, err
	}

	return blob, nil
}

// Write writes a blob to the bucket.
func (b *BboltDBBucket) Write(key string, blob Blob) error {
	if key == "" {
		return fmt.Errorf("bbolt: empty key: %w", status.StatusInvalidArg)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(b.bucket)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(key), blob.Data)
	})
}

// Remove removes a blob from the bucket.
func (b *BboltDBBucket) Remove(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(key))
	})
}

// ForEach iterates over all blobs in the bucket.
func (b *BboltDBBucket) ForEach(fn func(key string, b Blob) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			return fn(string(k), Blob{Data: bytes.Clone(v)})
		})
	})
}

// Close is non-operational, the database is closed by its owner.
func (*BboltDBBucket) Close() error {
	return nil
}
