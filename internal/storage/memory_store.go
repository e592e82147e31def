package storage

import "github.com/hashicorp/golang-lru/v2/expirable"

// memoryStore is a process-local cache bounded by entry count and TTL.
type memoryStore struct {
	lru *expirable.LRU[string, string]
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{lru: expirable.NewLRU[string, string](opts.MaxEntries, nil, opts.EntryTTL)}
}

func (m *memoryStore) Get(key string) (string, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *memoryStore) Put(key, value string) error {
	m.lru.Add(key, value)
	return nil
}

func (m *memoryStore) Close() error {
	m.lru.Purge()
	return nil
}
