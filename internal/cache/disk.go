package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskStore keeps one JSON file per entry under a directory. It suits setups
// without SQLite where entries should still survive restarts.
type DiskStore struct {
	dir string
	now func() time.Time
}

type diskEntry struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewDiskStore creates the entry directory if needed and returns a store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// entryPath maps a key to its file. Keys are hashed so arbitrary key content
// never reaches the filesystem.
func (d *DiskStore) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the value for key if present and unexpired. Expired files are
// removed on the way out.
func (d *DiskStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.entryPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	if entry.ExpiresAt != 0 && entry.ExpiresAt <= d.now().Unix() {
		_ = os.Remove(d.entryPath(key))
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores value under key, replacing any existing entry.
func (d *DiskStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := diskEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = d.now().Add(ttl).Unix()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	// Write to a temp file in the same directory and rename it into place, so
	// a concurrent Get never reads a partially written entry.
	tmp, err := os.CreateTemp(d.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.entryPath(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key. A missing file is not an error.
func (d *DiskStore) Delete(_ context.Context, key string) error {
	err := os.Remove(d.entryPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every entry file in the directory.
func (d *DiskStore) Clear(_ context.Context) error {
	matches, err := filepath.Glob(filepath.Join(d.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close is a no-op for the disk store.
func (d *DiskStore) Close() error { return nil }
