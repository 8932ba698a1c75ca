package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/anthozoa/anthozoa/internal/config"
	"github.com/anthozoa/anthozoa/internal/offline"
	"github.com/anthozoa/anthozoa/internal/offline/sqlitestore"
	"github.com/anthozoa/anthozoa/utils"
)

const sqliteFile = "offline.db"

// storageDir returns the directory holding cache generations.
func storageDir(cfg config.OfflineConfig) (string, error) {
	if cfg.Dir != "" {
		return utils.ExpandPath(cfg.Dir), nil
	}
	dir, err := gap.NewScope(gap.User, "anthozoa").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "offline"), nil
}

// openStorage opens the configured cache backend.
func openStorage(cfg config.OfflineConfig) (offline.Storage, error) {
	if cfg.Storage == config.StorageMemory {
		log.Debug("using memory storage", "capacity", cfg.MemoryCapacity)
		return offline.NewMemoryStorage(cfg.MemoryCapacity), nil
	}

	dir, err := storageDir(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create storage directory: %w", err)
		}
		path := filepath.Join(dir, sqliteFile)
		log.Debug("using sqlite storage", "path", path)
		return sqlitestore.Open(path)
	case config.StorageDisk:
		level := cfg.CompressionLevel
		if level == 0 {
			level = -1
		}
		log.Debug("using disk storage", "dir", dir, "level", cfg.CompressionLevel)
		return offline.NewDiskStorage(dir, offline.DiskStorageOptions{
			MemoryCapacity:   cfg.MemoryCapacity,
			DiskCapacity:     cfg.DiskCapacity,
			CompressionLevel: level,
			TTL:              cfg.TTL,
			CleanupInterval:  cfg.CleanupInterval,
		})
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
