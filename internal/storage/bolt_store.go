package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketName = []byte("embeddings")

	errNoBucket = errors.New("embeddings bucket missing")
)

// headerLen is the size of the big-endian unix expiry prefixed to every value.
const headerLen = 8

// boltStore persists embeddings in a single bbolt bucket. Expired entries are
// treated as misses on read and removed by a periodic sweep.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration

	sweepEvery time.Duration
	mu         sync.Mutex
	nextSweep  time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create embeddings bucket: %w", err)
	}

	return &boltStore{
		db:         db,
		ttl:        opts.EntryTTL,
		sweepEvery: opts.CleanupInterval,
		nextSweep:  time.Now().Add(opts.CleanupInterval),
	}, nil
}

func (b *boltStore) Close() error {
	return b.db.Close()
}

func (b *boltStore) Get(key string) (string, bool, error) {
	now := time.Now()
	if err := b.sweepIfDue(now); err != nil {
		return "", false, err
	}

	var (
		payload string
		hit     bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errNoBucket
		}
		v := bucket.Get([]byte(key))
		if v == nil || expired(v, now) {
			return nil
		}
		// v is only valid inside the transaction.
		payload, hit = string(v[headerLen:]), true
		return nil
	})
	return payload, hit, err
}

func (b *boltStore) Put(key, value string) error {
	now := time.Now()
	if err := b.sweepIfDue(now); err != nil {
		return err
	}

	entry := make([]byte, headerLen+len(value))
	binary.BigEndian.PutUint64(entry, uint64(now.Add(b.ttl).Unix()))
	copy(entry[headerLen:], value)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errNoBucket
		}
		return bucket.Put([]byte(key), entry)
	})
}

// sweepIfDue deletes expired entries at most once per sweep interval.
func (b *boltStore) sweepIfDue(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Before(b.nextSweep) {
		return nil
	}
	if err := b.sweep(now); err != nil {
		return fmt.Errorf("sweep expired embeddings: %w", err)
	}
	b.nextSweep = now.Add(b.sweepEvery)
	return nil
}

func (b *boltStore) sweep(now time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return errNoBucket
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; {
			if !expired(v, now) {
				k, v = c.Next()
				continue
			}
			deleted := append([]byte(nil), k...)
			if err := c.Delete(); err != nil {
				return err
			}
			k, v = c.Seek(deleted)
		}
		return nil
	})
}

// expired reports whether v is malformed or past its expiry at now.
func expired(v []byte, now time.Time) bool {
	if len(v) < headerLen {
		return true
	}
	exp := int64(binary.BigEndian.Uint64(v[:headerLen]))
	return exp <= now.Unix()
}
