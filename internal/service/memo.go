package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Memo stores generated texts by normalized request key.
type Memo interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryMemo keeps entries for the process lifetime. It never evicts.
type MemoryMemo struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryMemo creates an empty in-process memo.
func NewMemoryMemo() *MemoryMemo {
	return &MemoryMemo{data: make(map[string]string)}
}

func (m *MemoryMemo) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryMemo) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Len returns the number of memoized entries.
func (m *MemoryMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// RedisMemo shares generated texts between API instances. Keys never expire.
type RedisMemo struct {
	client *redis.Client
	prefix string
}

// NewRedisMemo creates a memo storing keys under prefix.
func NewRedisMemo(client *redis.Client, prefix string) *RedisMemo {
	return &RedisMemo{client: client, prefix: prefix}
}

func (m *RedisMemo) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := m.client.Get(ctx, m.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get memo key %s: %w", key, err)
	}
	return val, true, nil
}

func (m *RedisMemo) Set(ctx context.Context, key, value string) error {
	if err := m.client.Set(ctx, m.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set memo key %s: %w", key, err)
	}
	return nil
}
