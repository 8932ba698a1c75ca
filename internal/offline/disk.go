package offline

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anthozoa/anthozoa/internal/cache"
)

const manifestFile = "generations.index"

// DiskStorage persists each generation in its own directory under a root,
// backed by a cache.Manager (memory over zstd-compressed disk files). A gob
// manifest in the root records generation names in creation order.
type DiskStorage struct {
	mu     sync.Mutex
	root   string
	config cache.Config
	order  []string
	open   map[string]*diskGeneration
	closed bool
}

// DiskStorageOptions tunes the per-generation cache managers. Zero values
// keep the cache package defaults; a negative CompressionLevel stores
// entries uncompressed. Entries older than a positive TTL are never served
// and are swept every CleanupInterval.
type DiskStorageOptions struct {
	MemoryCapacity   int64
	DiskCapacity     int64
	CompressionLevel int
	TTL              time.Duration
	CleanupInterval  time.Duration
}

// NewDiskStorage opens (or creates) a storage rooted at dir.
func NewDiskStorage(dir string, opts DiskStorageOptions) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	cfg := *cache.DefaultConfig()
	if opts.MemoryCapacity > 0 {
		cfg.MemoryCapacity = opts.MemoryCapacity
	}
	if opts.DiskCapacity > 0 {
		cfg.DiskCapacity = opts.DiskCapacity
	}
	switch {
	case opts.CompressionLevel > 0:
		cfg.CompressionLevel = opts.CompressionLevel
	case opts.CompressionLevel < 0:
		cfg.CompressionLevel = 0
	}
	cfg.TTL = opts.TTL
	if opts.CleanupInterval > 0 {
		cfg.CleanupInterval = opts.CleanupInterval
	}

	s := &DiskStorage{
		root:   dir,
		config: cfg,
		open:   make(map[string]*diskGeneration),
	}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the storage directory.
func (s *DiskStorage) Root() string { return s.root }

// Open implements Storage.
func (s *DiskStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStorageClosed
	}
	if g, ok := s.open[name]; ok {
		return g, nil
	}

	cfg := s.config
	cfg.DiskPath = s.generationDir(name)
	m, err := cache.NewManager(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %q: %w", name, err)
	}
	g := &diskGeneration{m: m}
	s.open[name] = g

	if !s.known(name) {
		s.order = append(s.order, name)
		if err := s.saveManifest(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Has implements Storage.
func (s *DiskStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.known(name), nil
}

// Names implements Storage.
func (s *DiskStorage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

// Delete implements Storage.
func (s *DiskStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStorageClosed
	}
	if !s.known(name) {
		return false, nil
	}

	var err error
	if g, ok := s.open[name]; ok {
		err = g.m.Remove()
		delete(s.open, name)
	} else if rmErr := os.RemoveAll(s.generationDir(name)); rmErr != nil {
		err = fmt.Errorf("failed to remove cache %q: %w", name, rmErr)
	}

	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, errors.Join(err, s.saveManifest())
}

// Match implements Storage.
func (s *DiskStorage) Match(ctx context.Context, url string) (*Entry, error) {
	return MatchAll(ctx, s, url)
}

// Stats returns the cache manager counters of every open generation.
func (s *DiskStorage) Stats() map[string]cache.ManagerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]cache.ManagerStats, len(s.open))
	for name, g := range s.open {
		out[name] = g.m.Detailed()
	}
	return out
}

// Close flushes every open generation's index.
func (s *DiskStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, g := range s.open {
		errs = append(errs, g.m.Close())
	}
	s.open = nil
	return errors.Join(errs...)
}

func (s *DiskStorage) known(name string) bool {
	for _, n := range s.order {
		if n == name {
			return true
		}
	}
	return false
}

func (s *DiskStorage) generationDir(name string) string {
	return filepath.Join(s.root, url.PathEscape(name))
}

func (s *DiskStorage) loadManifest() error {
	f, err := os.Open(filepath.Join(s.root, manifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := gob.NewDecoder(f).Decode(&s.order); err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	return nil
}

func (s *DiskStorage) saveManifest() error {
	path := filepath.Join(s.root, manifestFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	err = gob.NewEncoder(f).Encode(s.order)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return os.Rename(tmp, path)
}

type diskGeneration struct {
	m *cache.Manager
}

func (g *diskGeneration) Match(_ context.Context, url string) (*Entry, error) {
	data, ok := g.m.Get(url)
	if !ok {
		return nil, ErrNotFound
	}
	var e Entry
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &e, nil
}

func (g *diskGeneration) Put(_ context.Context, e *Entry) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	return g.m.Put(e.URL, data)
}

func (g *diskGeneration) Delete(_ context.Context, url string) (bool, error) {
	if !g.m.Contains(url) {
		return false, nil
	}
	return true, g.m.Delete(url)
}

func (g *diskGeneration) Keys(_ context.Context) ([]string, error) {
	return g.m.Keys(), nil
}
