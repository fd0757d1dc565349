package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CacheEnv overrides the cache directory when set.
const CacheEnv = "RHSFIRST_CACHE"

// DefaultCacheDir is the cache directory name inside the module root.
const DefaultCacheDir = ".rhsfirst"

// OverlayFile is the name of the overlay file inside the cache directory.
const OverlayFile = "overlay.json"

// Overlay is the go build -overlay JSON format.
type Overlay struct {
	Replace map[string]string `json:"Replace"`
}

// Cache holds shadow files and the overlay mapping them over the originals.
//
// Thread Safety: NOT thread-safe. Callers rewrite concurrently and record
// results from a single goroutine.
type Cache struct {
	Dir     string
	Overlay Overlay
}

// CacheDir returns the cache directory for a module: $RHSFIRST_CACHE if set,
// <root>/.rhsfirst otherwise.
func CacheDir(m *Module) string {
	if dir := os.Getenv(CacheEnv); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	return filepath.Join(m.Root, DefaultCacheDir)
}

// OpenCache creates the cache directory if needed and loads an existing
// overlay file, so repeated runs (and watch mode) update one mapping.
func OpenCache(dir string) (*Cache, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}

	c := &Cache{Dir: dir, Overlay: Overlay{Replace: make(map[string]string)}}
	data, err := os.ReadFile(c.OverlayPath())
	switch {
	case os.IsNotExist(err):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read overlay: %w", err)
	}
	if err := json.Unmarshal(data, &c.Overlay); err != nil {
		return nil, fmt.Errorf("failed to decode overlay %s: %w", c.OverlayPath(), err)
	}
	if c.Overlay.Replace == nil {
		c.Overlay.Replace = make(map[string]string)
	}
	return c, nil
}

// OverlayPath returns the path of the overlay file.
func (c *Cache) OverlayPath() string {
	return filepath.Join(c.Dir, OverlayFile)
}

// Put writes code as the shadow of the source file at path and maps it in
// the overlay. Shadow names carry a content hash, so an unchanged rewrite
// reuses its file. A previous shadow of the same source is removed.
func (c *Cache) Put(path string, code []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	sum := sha256.Sum256(code)
	hash := hex.EncodeToString(sum[:])
	base := strings.TrimSuffix(filepath.Base(abs), ".go")
	shadow := filepath.Join(c.Dir, fmt.Sprintf("%s_%s.go", base, hash[:12]))

	if old, ok := c.Overlay.Replace[abs]; ok && old != shadow {
		_ = os.Remove(old) // Stale shadow, ignore removal errors
	}
	if err := os.WriteFile(shadow, code, 0o644); err != nil {
		return "", fmt.Errorf("failed to write shadow %s: %w", shadow, err)
	}
	c.Overlay.Replace[abs] = shadow
	return shadow, nil
}

// Drop removes the shadow of path, for sources that no longer need one.
func (c *Cache) Drop(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	old, ok := c.Overlay.Replace[abs]
	if !ok {
		return nil
	}
	delete(c.Overlay.Replace, abs)
	if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove shadow %s: %w", old, err)
	}
	return nil
}

// Write saves the overlay file and returns its path.
func (c *Cache) Write() (string, error) {
	data, err := json.MarshalIndent(c.Overlay, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to encode overlay: %w", err)
	}
	path := c.OverlayPath()
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write overlay %s: %w", path, err)
	}
	return path, nil
}

// Sources returns the overlaid source paths in sorted order.
func (c *Cache) Sources() []string {
	srcs := make([]string, 0, len(c.Overlay.Replace))
	for src := range c.Overlay.Replace {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	return srcs
}

// OverlayFlag returns the go command flag selecting the overlay file.
func OverlayFlag(path string) string {
	return "-overlay=" + path
}
