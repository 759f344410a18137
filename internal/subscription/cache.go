package subscription

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSnapshot is returned by LoadLast when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// cacheFilePrefix starts the name of the file the last fetched snapshot is
// kept in, under the user cache directory (e.g. ~/.cache on Linux,
// ~/Library/Caches on macOS). Each controller gets its own file.
const cacheFilePrefix = "subview_snapshot_"

// cacheFileName returns the cache file name for the controller at key.
func cacheFileName(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimRight(key, "/")))
	return cacheFilePrefix + hex.EncodeToString(sum[:])[:12] + ".json"
}

// cacheDir is swapped out by tests.
var cacheDir = os.UserCacheDir

func cachePath(key string) (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheFileName(key)), nil
}

// SaveLast writes snap to the on-disk cache of the controller at key so the
// next start can render a panel before the live fetch completes.
func SaveLast(key string, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	path, err := cachePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(snap)
}

// LoadLast reads the snapshot SaveLast saved for the same key. It may be
// stale. Snapshots of other controllers are never returned.
func LoadLast(key string) (*Snapshot, error) {
	path, err := cachePath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
