package papers

import (
	"context"
	"sync"

	"github.com/refstack/paperdex/internal/db"
)

// memStore is an in-memory stand-in for the db store.
type memStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}
	hsetN  int
}

func newMemStore() *memStore {
	return &memStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hsetN++
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

// HGetAllMulti yields empty maps for missing keys, like the driver's
// pipelined HGETALL.
func (m *memStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		h := make(map[string]string, len(m.hashes[key]))
		for k, v := range m.hashes[key] {
			h[k] = v
		}
		out[i] = h
	}
	return out, nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hashes, key)
	return nil
}

func (m *memStore) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{})
		m.sets[key] = s
	}
	for _, member := range members {
		s[member] = struct{}{}
	}
	return nil
}

func (m *memStore) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		delete(m.sets[key], member)
	}
	return nil
}

func (m *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}
