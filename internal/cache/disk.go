package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "cache.index"

	// Values smaller than this are stored raw.
	compressThreshold = 1024
)

// DiskCache is a persistent store rooted at one directory. Values are
// written as individual files; a gob-encoded index maps keys to files and
// is rewritten after every mutation.
type DiskCache struct {
	mu sync.Mutex

	dir      string
	capacity int64
	size     int64
	closed   bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry
	stats Stats
}

type diskEntry struct {
	Key          string
	File         string // base name inside dir
	Size         int64  // bytes on disk
	OriginalSize int64
	Timestamp    time.Time
	LastAccess   time.Time
	Hits         int64
	Compressed   bool
}

// NewDiskCache opens (or creates) a store in dir. A compression level of
// zero disables zstd.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dc.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
	}

	if err := dc.loadIndex(); err != nil {
		// A corrupt index only costs us the previous contents.
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
	}
	return dc, nil
}

// Dir returns the directory backing the store.
func (dc *DiskCache) Dir() string { return dc.dir }

// Get reads the value for key. Unreadable entries are dropped and reported
// as misses.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, _, ok := dc.read(key)
	return data, ok
}

// GetWithMetadata is Get plus the entry's bookkeeping.
func (dc *DiskCache) GetWithMetadata(key string) ([]byte, Metadata, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, e, ok := dc.read(key)
	if !ok {
		return nil, Metadata{}, false
	}
	return data, e.metadata(), true
}

func (dc *DiskCache) read(key string) ([]byte, *diskEntry, bool) {
	e, ok := dc.index[key]
	if dc.closed || !ok {
		dc.stats.Misses++
		return nil, nil, false
	}

	data, err := os.ReadFile(filepath.Join(dc.dir, e.File))
	if err == nil && e.Compressed {
		if dc.decoder == nil {
			err = errors.New("compressed entry without decoder")
		} else {
			data, err = dc.decoder.DecodeAll(data, nil)
		}
	}
	if err != nil {
		dc.drop(key, e)
		_ = dc.saveIndex()
		dc.stats.Misses++
		return nil, nil, false
	}

	e.LastAccess = time.Now()
	e.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = e.LastAccess
	return data, e, true
}

// Put writes value under key, evicting the least recently accessed entries
// when over capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrCacheClosed
	}

	payload, compressed := value, false
	if dc.encoder != nil && len(value) > compressThreshold {
		if z := dc.encoder.EncodeAll(value, nil); len(z) < len(value) {
			payload, compressed = z, true
		}
	}
	n := int64(len(payload))
	if n > dc.capacity {
		return ErrItemTooLarge
	}

	if old, ok := dc.index[key]; ok {
		dc.drop(key, old)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	name := fileName(key)
	if err := writeFileAtomic(filepath.Join(dc.dir, name), payload); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		Key:          key,
		File:         name,
		Size:         n,
		OriginalSize: int64(len(value)),
		Timestamp:    now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	dc.size += n
	return dc.saveIndex()
}

// Delete removes key. Missing keys are not an error.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrCacheClosed
	}
	if e, ok := dc.index[key]; ok {
		dc.drop(key, e)
		return dc.saveIndex()
	}
	return nil
}

// Clear removes every entry but keeps the directory.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrCacheClosed
	}
	for key, e := range dc.index {
		dc.drop(key, e)
	}
	return dc.saveIndex()
}

// Size returns the bytes used on disk.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.size
}

// Contains reports whether key is indexed.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	_, ok := dc.index[key]
	return ok
}

// Keys returns the indexed keys in lexical order.
func (dc *DiskCache) Keys() []string {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	keys := make([]string, 0, len(dc.index))
	for k := range dc.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a copy of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.ItemCount = int64(len(dc.index))
	s.updateHitRate()
	return s
}

// RemoveOlderThan drops entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, e := range dc.index {
		if e.Timestamp.Before(cutoff) {
			dc.drop(key, e)
			removed++
		}
	}
	if removed > 0 {
		_ = dc.saveIndex()
	}
	return removed
}

// EvictLRU frees space down to 90% of capacity.
func (dc *DiskCache) EvictLRU() int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	target := dc.capacity * 90 / 100
	evicted := 0
	for dc.size > target && len(dc.index) > 0 {
		dc.evictOldest()
		evicted++
	}
	if evicted > 0 {
		_ = dc.saveIndex()
	}
	return evicted
}

// Close persists the index. The store rejects writes afterwards.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return nil
	}
	dc.closed = true
	if dc.decoder != nil {
		dc.decoder.Close()
	}
	return dc.saveIndex()
}

// Remove closes the store and deletes its directory.
func (dc *DiskCache) Remove() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if !dc.closed && dc.decoder != nil {
		dc.decoder.Close()
	}
	dc.closed = true
	dc.index = make(map[string]*diskEntry)
	dc.size = 0
	if err := os.RemoveAll(dc.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	return nil
}

func (dc *DiskCache) drop(key string, e *diskEntry) {
	_ = os.Remove(filepath.Join(dc.dir, e.File))
	delete(dc.index, key)
	dc.size -= e.Size
}

func (dc *DiskCache) evictOldest() {
	var oldest *diskEntry
	for _, e := range dc.index {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest == nil {
		return
	}
	dc.drop(oldest.Key, oldest)
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return gob.NewDecoder(f).Decode(&dc.index)
}

// saveIndex must be called with the lock held.
func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (e *diskEntry) metadata() Metadata {
	return Metadata{
		Key:        e.Key,
		Size:       e.OriginalSize,
		Timestamp:  e.Timestamp,
		LastAccess: e.LastAccess,
		Hits:       e.Hits,
		Level:      LevelDisk,
	}
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + ".cache"
}

// writeFileAtomic writes to a temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
