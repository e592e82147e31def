// Package storage caches embedding payloads so repeated inputs skip the API.
package storage

import (
	"crypto/sha1" //nolint:gosec // cache keys, not security
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store caches embedding payloads by key. A miss returns ok=false with a nil error.
type Store interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Close() error
}

// Backend names accepted by NewStore.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

// Options tunes retention. Zero fields take package defaults.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
	MaxEntries      int
}

func (o Options) withDefaults() Options {
	if o.EntryTTL <= 0 {
		o.EntryTTL = 7 * 24 * time.Hour
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 12 * time.Hour
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = 1024
	}
	return o
}

// NewStore opens the backend named by typ. path is only used by bbolt.
func NewStore(typ, path string, opts Options) (Store, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", TypeNone:
		return noopStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		s, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// Key hashes parts into a fixed-length cache key. Parts are NUL separated so
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00"))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

type noopStore struct{}

func (noopStore) Get(string) (string, bool, error) { return "", false, nil }
func (noopStore) Put(string, string) error         { return nil }
func (noopStore) Close() error                     { return nil }
