package cache

import (
	"container/list"
	"sort"
	"sync"
	"time"
)

// MemoryCache is a byte-bounded LRU store.
type MemoryCache struct {
	mu sync.Mutex

	capacity int64
	size     int64

	items map[string]*list.Element
	order *list.List // front is most recently used

	stats Stats
}

type memoryItem struct {
	key     string
	value   []byte
	stored  time.Time
	touched time.Time
	hits    int64
}

func (it *memoryItem) size() int64 { return int64(len(it.value)) }

// NewMemoryCache creates an LRU holding at most capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get returns the value for key and marks it recently used.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.touch(key)
	if !ok {
		return nil, false
	}
	return it.value, true
}

// GetWithMetadata is Get plus the item's bookkeeping.
func (c *MemoryCache) GetWithMetadata(key string) ([]byte, Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.touch(key)
	if !ok {
		return nil, Metadata{}, false
	}
	return it.value, it.metadata(), true
}

func (c *MemoryCache) touch(key string) (*memoryItem, bool) {
	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	it := elem.Value.(*memoryItem)
	it.hits++
	it.touched = time.Now()
	c.stats.Hits++
	c.stats.LastAccess = it.touched
	return it, true
}

// Put stores value under key, evicting least recently used items to make
// room.
func (c *MemoryCache) Put(key string, value []byte) error {
	return c.put(key, value, time.Now())
}

// put stores value as if it had been written at stored.
func (c *MemoryCache) put(key string, value []byte, stored time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(value))
	if n > c.capacity {
		return ErrItemTooLarge
	}

	now := time.Now()
	if elem, ok := c.items[key]; ok {
		it := elem.Value.(*memoryItem)
		c.size += n - it.size()
		it.value = value
		it.stored = stored
		it.touched = now
		c.order.MoveToFront(elem)
		c.shrinkTo(c.capacity, elem)
		return nil
	}

	c.shrinkTo(c.capacity-n, nil)
	c.items[key] = c.order.PushFront(&memoryItem{
		key:     key,
		value:   value,
		stored:  stored,
		touched: now,
	})
	c.size += n
	return nil
}

// shrinkTo evicts from the back until size <= limit. keep is never evicted.
func (c *MemoryCache) shrinkTo(limit int64, keep *list.Element) {
	for c.size > limit {
		elem := c.order.Back()
		if elem == nil || elem == keep {
			return
		}
		c.remove(elem)
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}
}

func (c *MemoryCache) remove(elem *list.Element) {
	it := c.order.Remove(elem).(*memoryItem)
	delete(c.items, it.key)
	c.size -= it.size()
}

// Delete removes key. Missing keys are not an error.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Clear drops every item.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.size = 0
	return nil
}

// Size returns the number of stored bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Contains reports whether key is present without touching it.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Keys returns the stored keys in lexical order.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a copy of the counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.ItemCount = int64(len(c.items))
	s.updateHitRate()
	return s
}

// Prune removes items stored before now-maxAge and returns how many went.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryItem).stored.Before(cutoff) {
			c.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

func (it *memoryItem) metadata() Metadata {
	return Metadata{
		Key:        it.key,
		Size:       it.size(),
		Timestamp:  it.stored,
		LastAccess: it.touched,
		Hits:       it.hits,
		Level:      LevelMemory,
	}
}
