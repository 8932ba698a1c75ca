package offline

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthozoa/anthozoa/internal/cache"
)

// DefaultGenerationCapacity bounds the bytes a single in-memory generation
// holds before least recently used entries are evicted.
const DefaultGenerationCapacity = 64 << 20

// MemoryStorage keeps every generation in an LRU memory cache. Contents are
// lost when the process exits.
type MemoryStorage struct {
	mu       sync.Mutex
	capacity int64
	order    []string
	caches   map[string]*memoryGeneration
	closed   bool
}

// NewMemoryStorage creates a storage whose generations hold at most
// capacity bytes each. A non-positive capacity uses
// DefaultGenerationCapacity.
func NewMemoryStorage(capacity int64) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultGenerationCapacity
	}
	return &MemoryStorage{
		capacity: capacity,
		caches:   make(map[string]*memoryGeneration),
	}
}

// Open implements Storage.
func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStorageClosed
	}
	if c, ok := s.caches[name]; ok {
		return c, nil
	}
	c := &memoryGeneration{lru: cache.NewMemoryCache(s.capacity)}
	s.caches[name] = c
	s.order = append(s.order, name)
	return c, nil
}

// Has implements Storage.
func (s *MemoryStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.caches[name]
	return ok, nil
}

// Names implements Storage.
func (s *MemoryStorage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		return false, nil
	}
	_ = c.lru.Clear()
	delete(s.caches, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Match implements Storage.
func (s *MemoryStorage) Match(ctx context.Context, url string) (*Entry, error) {
	return MatchAll(ctx, s, url)
}

// Close drops every generation.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.caches {
		_ = c.lru.Clear()
	}
	s.caches = make(map[string]*memoryGeneration)
	s.order = nil
	s.closed = true
	return nil
}

type memoryGeneration struct {
	lru *cache.MemoryCache
}

func (g *memoryGeneration) Match(_ context.Context, url string) (*Entry, error) {
	data, ok := g.lru.Get(url)
	if !ok {
		return nil, ErrNotFound
	}
	var e Entry
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &e, nil
}

func (g *memoryGeneration) Put(_ context.Context, e *Entry) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	if err := g.lru.Put(e.URL, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", e.URL, err)
	}
	return nil
}

func (g *memoryGeneration) Delete(_ context.Context, url string) (bool, error) {
	if !g.lru.Contains(url) {
		return false, nil
	}
	return true, g.lru.Delete(url)
}

func (g *memoryGeneration) Keys(_ context.Context) ([]string, error) {
	return g.lru.Keys(), nil
}
