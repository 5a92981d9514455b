// Package cache stores build artifacts under content-derived keys so the dev
// server can skip rebuilding the wasm client when its sources are unchanged.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const indexFile = "index.json"

// Cache is a directory of artifacts indexed by key
type Cache struct {
	mu    sync.Mutex
	dir   string
	index *Index
	stats Stats
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached artifact
type Entry struct {
	Key     string    `json:"key"`
	Hash    string    `json:"hash"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// Stats counts lookups
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// DefaultDir returns the per-user cache directory
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cache", "graphscope")
}

// New opens the cache in dir, creating it if needed. A missing or corrupt
// index starts the cache empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(filepath.Join(dir, "artifacts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{dir: dir, index: newIndex()}
	if data, err := os.ReadFile(filepath.Join(dir, indexFile)); err == nil {
		var idx Index
		if json.Unmarshal(data, &idx) == nil && idx.Entries != nil {
			c.index = &idx
		}
	}
	return c, nil
}

func newIndex() *Index {
	return &Index{Version: "1", Entries: make(map[string]*Entry), Updated: time.Now()}
}

// Dir returns the cache directory
func (c *Cache) Dir() string { return c.dir }

// Get returns the artifact stored under key. Entries whose file went missing
// or no longer matches its hash are dropped.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil || hash(data) != entry.Hash {
		os.Remove(entry.Path)
		delete(c.index.Entries, key)
		c.saveLocked()
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return data, true
}

// Put stores data under key, replacing any previous artifact
func (c *Cache) Put(key string, data []byte) error {
	sum := hash(data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.index.Entries[key]; ok {
		if old.Hash == sum {
			return nil
		}
		os.Remove(old.Path)
	}

	path := filepath.Join(c.dir, "artifacts", fmt.Sprintf("%s_%s", sanitizeKey(key), sum[:8]))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	c.index.Entries[key] = &Entry{
		Key:     key,
		Hash:    sum,
		Path:    path,
		Size:    int64(len(data)),
		Created: time.Now(),
	}
	return c.saveLocked()
}

// Clear removes every artifact
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	artifacts := filepath.Join(c.dir, "artifacts")
	if err := os.RemoveAll(artifacts); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(artifacts, 0755); err != nil {
		return err
	}
	c.index = newIndex()
	return c.saveLocked()
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.index.Entries)
	return s
}

func (c *Cache) saveLocked() error {
	c.index.Updated = time.Now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, indexFile), data, 0644)
}

// Key generates a cache key from inputs
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SourceKey derives a key from go.mod, go.sum and every Go file under the
// given directories, relative to root. extra is mixed in (toolchain
// version, build flags).
func SourceKey(root string, dirs []string, extra ...string) (string, error) {
	files := []string{"go.mod", "go.sum"}
	for _, dir := range dirs {
		files = append(files, collectGoFiles(root, dir)...)
	}
	sort.Strings(files)

	inputs := append([]string(nil), extra...)
	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(root, file))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs = append(inputs, file, string(data))
	}
	return Key(inputs...), nil
}

func collectGoFiles(root, dir string) []string {
	var files []string
	filepath.Walk(filepath.Join(root, dir), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		// Skip vendor and hidden directories
		if info.IsDir() && (strings.HasPrefix(info.Name(), ".") || strings.HasPrefix(info.Name(), "_") || info.Name() == "vendor") {
			return filepath.SkipDir
		}
		if strings.HasSuffix(path, ".go") {
			if rel, err := filepath.Rel(root, path); err == nil {
				files = append(files, rel)
			}
		}
		return nil
	})
	return files
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(key string) string {
	if len(key) > 16 {
		key = key[:16]
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == '.' {
			return '_'
		}
		return r
	}, key)
}
