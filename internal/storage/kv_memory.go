package storage

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore is an in-memory key/value store for tests and single-process use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	calls  MemoryCalls
	fail   error
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Get            int
	Put            int
	PutIfAbsent    int
	CompareAndSwap int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (store *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.calls.Get++
	if store.fail != nil {
		return nil, false, store.fail
	}
	value, ok := store.values[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Put writes value under key.
func (store *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.calls.Put++
	if store.fail != nil {
		return store.fail
	}
	store.values[key] = bytes.Clone(value)
	return nil
}

// PutIfAbsent writes value only when key is missing.
func (store *MemoryStore) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.calls.PutIfAbsent++
	if store.fail != nil {
		return false, store.fail
	}
	if _, ok := store.values[key]; ok {
		return false, nil
	}
	store.values[key] = bytes.Clone(value)
	return true, nil
}

// CompareAndSwap replaces old with value when the stored bytes equal old.
func (store *MemoryStore) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.calls.CompareAndSwap++
	if store.fail != nil {
		return false, store.fail
	}
	current, ok := store.values[key]
	if !ok || !bytes.Equal(current, old) {
		return false, nil
	}
	store.values[key] = bytes.Clone(value)
	return true, nil
}

// Calls returns the invocation counters.
func (store *MemoryStore) Calls() MemoryCalls {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.calls
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (store *MemoryStore) FailWith(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.fail = err
}
