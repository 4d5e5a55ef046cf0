package mixcloud

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pbrlib/internal/fileutil"
)

const (
	showSuffix  = "-show.json"
	embedSuffix = "-embed.html"
)

// Cache stores raw API responses on disk. Freshness is judged by file
// modification time.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// CacheEntry describes one cached response.
type CacheEntry struct {
	Name    string
	Kind    string
	Size    int64
	ModTime time.Time
	Fresh   bool
}

// NewCache returns a cache rooted at dir.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// ShowKey is the cache file name of a show metadata response.
func ShowKey(path string) string {
	return sanitizeKey(path) + showSuffix
}

// EmbedKey is the cache file name of an embed markup response.
func EmbedKey(path string) string {
	return sanitizeKey(path) + embedSuffix
}

func sanitizeKey(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	var b strings.Builder
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Get returns the cached body for key when it is younger than the TTL.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}
	path := filepath.Join(c.dir, key)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	if !c.fresh(info.ModTime()) {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores body under key.
func (c *Cache) Put(key string, body []byte) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(c.dir, key), body, 0o644); err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}
	return nil
}

// List returns every cached response sorted by name.
func (c *Cache) List() ([]CacheEntry, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	out := make([]CacheEntry, 0, len(entries))
	for _, entry := range entries {
		kind := entryKind(entry.Name())
		if entry.IsDir() || kind == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, CacheEntry{
			Name:    entry.Name(),
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Fresh:   c.fresh(info.ModTime()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Clear removes cached responses, or only stale ones when staleOnly is set.
// It returns the number of files removed.
func (c *Cache) Clear(staleOnly bool) (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if staleOnly && entry.Fresh {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name, err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) fresh(modTime time.Time) bool {
	return c.now().Sub(modTime) < c.ttl
}

func entryKind(name string) string {
	switch {
	case strings.HasSuffix(name, showSuffix):
		return "show"
	case strings.HasSuffix(name, embedSuffix):
		return "embed"
	default:
		return ""
	}
}
