// Package cache provides the byte-level stores that back offline cache
// generations: an in-memory LRU (L1), a zstd-compressed disk store (L2) and a
// Manager that layers the two with promotion and periodic cleanup.
package cache
