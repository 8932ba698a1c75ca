package cache

import (
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when a value exceeds the store capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when a key is not present.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheClosed is returned by a disk store after Close or Remove.
	ErrCacheClosed = errors.New("cache closed")
)

// Level identifies the tier an entry was served from.
type Level int

const (
	// LevelMemory is the in-process LRU.
	LevelMemory Level = iota
	// LevelDisk is the persistent store.
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "L1-Memory"
	case LevelDisk:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds counters for one store.
type Stats struct {
	Capacity  int64
	Size      int64
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// Metadata describes a stored item.
type Metadata struct {
	Key        string
	Size       int64
	Timestamp  time.Time
	LastAccess time.Time
	Hits       int64
	Level      Level
}

// Config configures a Manager.
type Config struct {
	MemoryCapacity int64 // bytes

	DiskCapacity     int64 // bytes
	DiskPath         string
	CompressionLevel int // zstd level, 0 disables compression

	// TTL of zero keeps entries until evicted for size.
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns the configuration used for a single cache
// generation.
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity:   32 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		CleanupInterval:  time.Hour,
	}
}

// Cache is the contract shared by every store in this package.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error

	Size() int64
	Contains(key string) bool
	Keys() []string

	Stats() Stats
}
