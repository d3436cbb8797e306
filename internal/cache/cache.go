// Package cache persists fetched profile pages across runs so unchanged
// pages are not re-downloaded. Each slug maps to a SHA-256 digest in a
// JSON index plus a raw HTML blob in a side directory; the pair is
// written together so an interrupted run leaves every slug either fully
// cached or absent.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/hash/sha256"
)

const (
	indexFile = "index.json"
	blobDir   = "html"
)

// Cache is an on-disk, single-process page cache. It is not safe for
// concurrent invocations of the pipeline; access is serialized by
// convention.
type Cache struct {
	dir    string
	index  map[string]string
	hasher *sha256.Hasher
	logger *zap.Logger
}

// Open loads the cache rooted at dir, creating it on first use. A
// missing index is an empty cache; a malformed index is a startup
// error and must abort the run.
func Open(dir string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(dir, blobDir), 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	c := &Cache{
		dir:    dir,
		index:  make(map[string]string),
		hasher: sha256.New(),
		logger: logger,
	}
	data, err := os.ReadFile(c.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache index: %w", err)
	}
	if err := json.Unmarshal(data, &c.index); err != nil {
		return nil, fmt.Errorf("malformed cache index %s: %w", c.indexPath(), err)
	}
	logger.Debug("cache index loaded", zap.Int("entries", len(c.index)))
	return c, nil
}

// Get returns the cached HTML for slug. A hit requires both an index
// entry and a readable blob; a blob without an index entry (or the
// reverse) is treated as a miss. The cached content is trusted as-is
// and not re-validated against the live page.
func (c *Cache) Get(slug string) ([]byte, bool) {
	if _, ok := c.index[slug]; !ok {
		return nil, false
	}
	data, err := os.ReadFile(c.blobPath(slug))
	if err != nil {
		c.logger.Warn("cache blob missing despite index entry",
			zap.String("slug", slug), zap.Error(err))
		return nil, false
	}
	return data, true
}

// Put stores html for slug, overwriting any previous entry, and
// reports whether the content hash changed. The blob is written before
// the index so a crash between the two never yields a dangling index
// entry.
func (c *Cache) Put(slug string, html []byte) (changed bool, err error) {
	digest := c.hasher.Hash(html)
	prev, existed := c.index[slug]
	if err := os.WriteFile(c.blobPath(slug), html, 0o600); err != nil {
		return false, fmt.Errorf("write cache blob for %s: %w", slug, err)
	}
	c.index[slug] = digest
	if err := c.writeIndex(); err != nil {
		return false, err
	}
	changed = existed && prev != digest
	if changed {
		c.logger.Debug("page content changed", zap.String("slug", slug))
	}
	return changed, nil
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	return len(c.index)
}

func (c *Cache) writeIndex() error {
	payload, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache index: %w", err)
	}
	if err := os.WriteFile(c.indexPath(), append(payload, '\n'), 0o600); err != nil {
		return fmt.Errorf("write cache index: %w", err)
	}
	return nil
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, indexFile)
}

func (c *Cache) blobPath(slug string) string {
	return filepath.Join(c.dir, blobDir, slug+".html")
}
