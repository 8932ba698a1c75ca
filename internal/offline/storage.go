package offline

import (
	"context"
	"errors"
)

// Cache is one named generation of stored responses, keyed by URL.
type Cache interface {
	// Match returns the entry stored under url or ErrNotFound.
	Match(ctx context.Context, url string) (*Entry, error)
	// Put stores e under e.URL, replacing any previous entry.
	Put(ctx context.Context, e *Entry) error
	// Delete removes url. It reports whether an entry existed.
	Delete(ctx context.Context, url string) (bool, error)
	// Keys returns the stored URLs in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Storage holds named caches.
type Storage interface {
	// Open returns the named cache, creating it if needed.
	Open(ctx context.Context, name string) (Cache, error)
	// Has reports whether the named cache exists.
	Has(ctx context.Context, name string) (bool, error)
	// Names lists caches in creation order.
	Names(ctx context.Context) ([]string, error)
	// Delete removes the named cache and its entries. It reports whether
	// the cache existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match searches every cache in creation order and returns the first
	// entry stored under url, or ErrNotFound.
	Match(ctx context.Context, url string) (*Entry, error)
	// Close releases resources held by the storage.
	Close() error
}

// MatchAll implements Storage.Match on top of Names and Open.
func MatchAll(ctx context.Context, s Storage, url string) (*Entry, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		c, err := s.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		e, err := c.Match(ctx, url)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}
