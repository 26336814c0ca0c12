package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryKeys bounds a Memory store built without WithMaxKeys.
const DefaultMemoryKeys = 100_000

// Memory is a process-local KV. Values vanish on restart, and once the store
// holds its maximum number of keys the least recently used key is dropped.
type Memory struct {
	values *lru.Cache[string, []byte]
}

// MemoryOption customises a Memory store.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	maxKeys int
}

// WithMaxKeys caps how many keys the store keeps.
func WithMaxKeys(n int) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.maxKeys = n
		}
	}
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	cfg := memoryConfig{maxKeys: DefaultMemoryKeys}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	values, err := lru.New[string, []byte](cfg.maxKeys)
	if err != nil {
		// Only a non-positive size fails, which the option rules out.
		panic(err)
	}
	return &Memory{values: values}
}

// Len reports how many keys are held.
func (m *Memory) Len() int { return m.values.Len() }

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := m.values.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.values.Add(key, append([]byte(nil), value...))
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.values.Remove(key)
	return nil
}
