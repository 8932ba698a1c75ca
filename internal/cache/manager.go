package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Manager layers a MemoryCache (L1) over a DiskCache (L2). Reads promote
// disk hits into memory; writes go to both tiers before returning.
type Manager struct {
	l1 *MemoryCache
	l2 *DiskCache

	config *Config

	cleanupStop   chan struct{}
	cleanupTicker *time.Ticker
	cleanupWg     sync.WaitGroup

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates counters across tiers.
type ManagerStats struct {
	TotalHits   int64
	TotalMisses int64
	L1Hits      int64
	L2Hits      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time

	L1 Stats
	L2 Stats
}

// NewManager opens both tiers. config.DiskPath is required.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DiskPath == "" {
		return nil, errors.New("cache disk path is required")
	}

	l2, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		l1:          NewMemoryCache(config.MemoryCapacity),
		l2:          l2,
		config:      config,
		cleanupStop: make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		m.startCleanup()
	}
	return m, nil
}

// Get checks memory, then disk. Entries older than the TTL are removed
// and reported as misses, even before the next cleanup run.
func (m *Manager) Get(key string) ([]byte, bool) {
	data, _, ok := m.GetWithMetadata(key)
	return data, ok
}

// GetWithMetadata is Get plus the bookkeeping of the tier that answered.
func (m *Manager) GetWithMetadata(key string) ([]byte, Metadata, bool) {
	if data, meta, ok := m.l1.GetWithMetadata(key); ok {
		if m.expired(meta) {
			_ = m.Delete(key)
			m.count(func(s *ManagerStats) { s.TotalMisses++ })
			return nil, Metadata{}, false
		}
		m.count(func(s *ManagerStats) { s.L1Hits++; s.TotalHits++ })
		return data, meta, true
	}
	if data, meta, ok := m.l2.GetWithMetadata(key); ok {
		if m.expired(meta) {
			_ = m.Delete(key)
			m.count(func(s *ManagerStats) { s.TotalMisses++ })
			return nil, Metadata{}, false
		}
		m.count(func(s *ManagerStats) { s.L2Hits++; s.TotalHits++; s.Promotions++ })
		// Best effort: a value larger than L1 simply stays on disk. The
		// promoted copy keeps the disk timestamp so it expires on time.
		_ = m.l1.put(key, data, meta.Timestamp)
		return data, meta, true
	}
	m.count(func(s *ManagerStats) { s.TotalMisses++ })
	return nil, Metadata{}, false
}

func (m *Manager) expired(meta Metadata) bool {
	return m.config.TTL > 0 && time.Since(meta.Timestamp) > m.config.TTL
}

// Put writes to disk first so a successful return means the value is
// persisted, then to memory.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.l2.Put(key, value); err != nil {
		return fmt.Errorf("L2 cache error: %w", err)
	}
	if err := m.l1.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("L1 cache error: %w", err)
	}
	return nil
}

// Delete removes key from both tiers.
func (m *Manager) Delete(key string) error {
	return errors.Join(m.l1.Delete(key), m.l2.Delete(key))
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	return errors.Join(m.l1.Clear(), m.l2.Clear())
}

// Size returns the bytes held on disk; memory is a subset of it.
func (m *Manager) Size() int64 { return m.l2.Size() }

// Contains reports whether either tier holds key.
func (m *Manager) Contains(key string) bool {
	return m.l1.Contains(key) || m.l2.Contains(key)
}

// Keys returns the persisted keys.
func (m *Manager) Keys() []string { return m.l2.Keys() }

// Stats returns the disk tier's counters, which describe the persisted
// contents. Use Detailed for per-tier numbers.
func (m *Manager) Stats() Stats { return m.l2.Stats() }

// Detailed returns per-tier and aggregate counters.
func (m *Manager) Detailed() ManagerStats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.L1 = m.l1.Stats()
	s.L2 = m.l2.Stats()
	return s
}

// Close stops cleanup and persists the disk index.
func (m *Manager) Close() error {
	m.stopCleanup()
	_ = m.l1.Clear()
	if err := m.l2.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

// Remove stops cleanup and deletes everything on disk.
func (m *Manager) Remove() error {
	m.stopCleanup()
	_ = m.l1.Clear()
	return m.l2.Remove()
}

func (m *Manager) count(fn func(*ManagerStats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}

func (m *Manager) startCleanup() {
	m.cleanupTicker = time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func(ticker *time.Ticker, stop chan struct{}) {
		defer m.cleanupWg.Done()
		for {
			select {
			case <-ticker.C:
				m.cleanup()
			case <-stop:
				return
			}
		}
	}(m.cleanupTicker, m.cleanupStop)
}

func (m *Manager) stopCleanup() {
	if m.cleanupTicker == nil {
		return
	}
	close(m.cleanupStop)
	m.cleanupWg.Wait()
	m.cleanupTicker.Stop()
	m.cleanupTicker = nil
}

func (m *Manager) cleanup() {
	m.count(func(s *ManagerStats) { s.CleanupRuns++; s.LastCleanup = time.Now() })

	if m.config.TTL > 0 {
		m.l2.RemoveOlderThan(time.Now().Add(-m.config.TTL))
		m.l1.Prune(m.config.TTL)
	}
	if m.l2.Size() > m.config.DiskCapacity {
		m.l2.EvictLRU()
	}
}
