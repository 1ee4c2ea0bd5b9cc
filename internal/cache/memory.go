package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
)

// Memory is a process-local LRU. Every entry lives for the TTL given at
// construction; the per-call ttl is ignored.
type Memory struct {
	lru *lru.LRU[string, []byte]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size < 1 {
		size = 1
	}
	return &Memory{lru: lru.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.lru.Get(key)
	obs.RecordCacheLookup("memory", ok)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.lru.Remove(k)
	}
	return nil
}
