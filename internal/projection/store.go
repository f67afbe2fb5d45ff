package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("projection: key not found")

// Store is the interface for projection persistence (Redis-backed in production).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DefaultInMemorySize bounds the in-memory store.
const DefaultInMemorySize = 256

// InMemoryStore is a bounded in-memory projection store for single-instance
// deployments and tests. Entries are evicted least-recently-used first.
type InMemoryStore struct {
	lru *expirable.LRU[string, entry]
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryStore creates an in-memory store holding up to size entries.
// maxTTL caps every entry's lifetime; 0 means entries only expire by their own ttl.
func NewInMemoryStore(size int, maxTTL time.Duration) *InMemoryStore {
	if size <= 0 {
		size = DefaultInMemorySize
	}
	return &InMemoryStore{lru: expirable.NewLRU[string, entry](size, nil, maxTTL)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.lru.Remove(key)
		return nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.lru.Add(key, entry{value: append([]byte(nil), value...), expiresAt: exp})
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (s *InMemoryStore) Len() int {
	return s.lru.Len()
}

// SetJSON is a convenience helper to serialize and store a value.
func SetJSON(ctx context.Context, store Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return store.Set(ctx, key, data, ttl)
}

// GetJSON is a convenience helper to retrieve and deserialize a value.
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
