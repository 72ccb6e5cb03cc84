package halfsquare

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
)

// Cacheable artifact kinds.
const (
	KindMask   = "mask"
	KindBuffer = "buffer"
)

// CacheKey identifies a size keyed artifact, e.g. mask-145.
type CacheKey struct {
	Kind string
	Size int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s-%d", k.Kind, k.Size)
}

// CacheStore keeps the artifacts that may be reused between runs.
type CacheStore interface {
	// Get returns the path of a usable artifact for key, or ok == false when
	// there is none (missing or stale).
	Get(key CacheKey) (path string, ok bool, err error)
	// Put stores img under key and returns its path.
	Put(key CacheKey, img image.Image) (path string, err error)
}

// FileCache stores artifacts as <kind>-<size>.png files in a directory.
type FileCache struct {
	Dir string
}

// NewFileCache returns a cache rooted at dir.
func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir}
}

func (c *FileCache) path(key CacheKey) string {
	return filepath.Join(c.Dir, key.String()+".png")
}

// Get reports a hit only when the file exists and decodes to a size×size image.
// Anything else counts as a miss so the caller regenerates the artifact.
func (c *FileCache) Get(key CacheKey) (string, bool, error) {
	p := c.path(key)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("checking cache entry %s: %w", key, err)
	}

	size, err := imageSize(p)
	if err != nil || size != image.Pt(key.Size, key.Size) {
		return "", false, nil
	}
	return p, true, nil
}

// Put writes img atomically, replacing any previous entry.
func (c *FileCache) Put(key CacheKey, img image.Image) (string, error) {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	p := c.path(key)
	if err := SaveImage(p, img); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}
	return p, nil
}
