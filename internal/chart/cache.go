package chart

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache stores rendered charts on disk keyed by Key.
type Cache struct {
	dir    string
	maxAge time.Duration
	clock  clockwork.Clock
}

// NewCache creates the cache directory. A cache that cannot create its
// directory still works; every Get misses and Set returns the error.
func NewCache(dir string, maxAge time.Duration, logger *slog.Logger) *Cache {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("chart cache unavailable", "dir", dir, "error", err)
	}
	return &Cache{dir: dir, maxAge: maxAge, clock: clockwork.NewRealClock()}
}

func (c *Cache) path(key string) (string, error) {
	for _, r := range key {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return "", fmt.Errorf("invalid chart key %q", key)
		}
	}
	if key == "" {
		return "", fmt.Errorf("empty chart key")
	}
	return filepath.Join(c.dir, fmt.Sprintf("categories_%s.png", key)), nil
}

// Get returns a cached chart unless it is missing or older than maxAge.
func (c *Cache) Get(key string) ([]byte, bool) {
	path, err := c.path(key)
	if err != nil {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.maxAge > 0 && c.clock.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a chart. The file is written under a temporary name and
// renamed so readers never see a partial PNG.
func (c *Cache) Set(key string, data []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, ".chart-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
