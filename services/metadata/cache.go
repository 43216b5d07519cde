package metadata

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// titleTTL is the freshness window for a cached title document. Entries older
// than this are refetched from upstream before being trusted again.
const titleTTL = time.Hour

// fileCache stores one raw title document per (identifier, language) pair at
// {dir}/{id}_{lang}.json. Staleness is judged purely by file age.
type fileCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
	now func() time.Time
}

func newFileCache(fs afero.Fs, dir string, ttl time.Duration) *fileCache {
	return &fileCache{fs: fs, dir: dir, ttl: ttl, now: time.Now}
}

func (c *fileCache) path(imdbID, language string) string {
	return filepath.Join(c.dir, imdbID+"_"+language+".json")
}

// get returns the cached document for the key along with its freshness. A
// stale entry is still returned so callers can fall back to it when the
// refetch fails. A miss returns (nil, false, nil).
func (c *fileCache) get(imdbID, language string) ([]byte, bool, error) {
	if imdbID == "" {
		return nil, false, errors.New("empty cache key")
	}
	path := c.path(imdbID, language)
	fi, err := c.fs.Stat(path)
	if err != nil {
		return nil, false, nil
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, false, nil
	}
	fresh := c.now().Sub(fi.ModTime()) <= c.ttl
	return data, fresh, nil
}

// put replaces the document for the key. The write goes to a temporary path
// first and is renamed into place so a concurrent reader never observes a
// partially written file.
func (c *fileCache) put(imdbID, language string, doc []byte) error {
	if imdbID == "" {
		return errors.New("empty cache key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	path := c.path(imdbID, language)
	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, doc, 0o644); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return nil
}
