// Package cache keeps the widget's downloaded image on disk.
//
// A Cache guards a single file under a root directory. Ensure downloads the
// file only when it is missing; Clear drops the whole root. There is no
// expiry and no checksum: existence is the only thing checked.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"ribbon/internal/config"
	"ribbon/internal/debug"
	rberrors "ribbon/internal/errors"
)

const (
	// AppDirName is the directory created under the XDG base directory.
	AppDirName = "ribbon"
	// ResourceName is the file name of the cached image.
	ResourceName = "ribbon.png"
)

// ErrCacheIO marks local file system failures while reading or writing the cache.
var ErrCacheIO = rberrors.New(rberrors.CodeCacheFailed, "cache I/O failed", nil)

// Cache is a download-if-absent store for one file.
type Cache struct {
	root    string
	name    string
	fetcher Fetcher
}

// New returns a cache storing name under root, filled by fetcher.
func New(root, name string, fetcher Fetcher) *Cache {
	return &Cache{root: root, name: name, fetcher: fetcher}
}

// DefaultRoot resolves the cache root for a storage mode. An explicit dir
// wins over the mode. "synced" lives under the XDG data home, which is the
// directory users normally back up or sync; "local" uses the XDG cache home.
func DefaultRoot(storage, dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	switch storage {
	case config.StorageLocal, "":
		return filepath.Join(xdg.CacheHome, AppDirName), nil
	case config.StorageSynced:
		return filepath.Join(xdg.DataHome, AppDirName, "cache"), nil
	default:
		return "", rberrors.New(rberrors.CodeConfigurationError, fmt.Sprintf("unknown cache storage %q", storage), nil)
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// Path returns the full path of the cached file.
func (c *Cache) Path() string { return filepath.Join(c.root, c.name) }

// Exists reports whether the cached file is present.
func (c *Cache) Exists() bool {
	info, err := os.Stat(c.Path())
	return err == nil && !info.IsDir()
}

// Ensure makes sure the cached file exists, fetching it when absent.
// It reports whether a fetch happened. Repeat calls on a filled cache do
// not touch the network.
func (c *Cache) Ensure(ctx context.Context) (bool, error) {
	if c.Exists() {
		debug.Logw("cache hit", "path", c.Path())
		return false, nil
	}
	if c.fetcher == nil {
		return false, fmt.Errorf("%w: no fetcher configured", ErrCacheIO)
	}

	//nolint:gosec // G301: cache directory uses standard permissions
	if err := os.MkdirAll(c.root, 0755); err != nil {
		return false, fmt.Errorf("%w: create %s: %v", ErrCacheIO, c.root, err)
	}

	tmp, err := os.CreateTemp(c.root, "."+c.name+".*")
	if err != nil {
		return false, fmt.Errorf("%w: create temp file: %v", ErrCacheIO, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	debug.Logw("cache miss, fetching", "path", c.Path())
	if err := c.fetcher.Fetch(ctx, tmp); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("%w: close temp file: %v", ErrCacheIO, err)
	}
	if err := os.Rename(tmpPath, c.Path()); err != nil {
		return false, fmt.Errorf("%w: commit %s: %v", ErrCacheIO, c.Path(), err)
	}
	committed = true
	return true, nil
}

// Clear removes the whole cache root. Clearing an absent cache is not an error.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.root); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrCacheIO, c.root, err)
	}
	debug.Logw("cache cleared", "root", c.root)
	return nil
}

// Open returns the cached file for reading.
func (c *Cache) Open() (*os.File, error) {
	f, err := os.Open(c.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCacheIO, c.Path(), err)
	}
	return f, nil
}
