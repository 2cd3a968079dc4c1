// Package cache keeps the last fetched copy of each remote dashboard on
// disk, so dashboards still open when the data host is unreachable.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dataFile      = "data.json"
	timestampFile = "update_timestamp.txt"
	metaFile      = "meta.json"
	entryPrefix   = "dash-"
)

// ErrMiss is returned when a dashboard has no cached snapshot.
var ErrMiss = errors.New("no cached snapshot")

type SnapshotCache struct {
	dir     string
	maxSize int64         // max total cache size in bytes
	ttl     time.Duration // how long a snapshot counts as fresh
}

// SnapshotMeta describes where and when a snapshot was taken.
type SnapshotMeta struct {
	Dashboard string    `json:"dashboard"`
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Snapshot is the raw payload of one dashboard.
type Snapshot struct {
	Data      []byte
	Timestamp string
}

// Entry is a cached snapshot as listed on disk.
type Entry struct {
	SnapshotMeta
	Size         int64
	LastModified time.Time
	Path         string
}

func NewSnapshotCache(dir string, maxSizeMB int, ttl time.Duration) (*SnapshotCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot cache dir: %w", err)
	}
	return &SnapshotCache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (c *SnapshotCache) Dir() string { return c.dir }

func (c *SnapshotCache) entryDir(dashboard string) string {
	return filepath.Join(c.dir, entryPrefix+dashboard)
}

// Fresh reports whether the dashboard has a snapshot younger than the TTL.
func (c *SnapshotCache) Fresh(dashboard string) bool {
	info, err := os.Stat(filepath.Join(c.entryDir(dashboard), dataFile))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < c.ttl
}

// Store replaces the snapshot of a dashboard.
func (c *SnapshotCache) Store(dashboard string, snap Snapshot, meta SnapshotMeta) error {
	dir := c.entryDir(dashboard)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, dataFile), snap.Data); err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, timestampFile), []byte(snap.Timestamp)); err != nil {
		return err
	}
	meta.Dashboard = dashboard
	return c.WriteMeta(dashboard, meta)
}

// Load returns the cached snapshot of a dashboard, stale or not.
func (c *SnapshotCache) Load(dashboard string) (*Snapshot, error) {
	dir := c.entryDir(dashboard)
	data, err := os.ReadFile(filepath.Join(dir, dataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dashboard, ErrMiss)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap := &Snapshot{Data: data}
	if ts, err := os.ReadFile(filepath.Join(dir, timestampFile)); err == nil {
		snap.Timestamp = strings.TrimSpace(string(ts))
	}
	return snap, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}

// Evict removes expired snapshots, then the oldest ones while the cache is
// over its size cap. A snapshot is evicted as a whole.
func (c *SnapshotCache) Evict() error {
	entries, err := c.ListEntries()
	if err != nil {
		return err
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}

	now := time.Now()
	remaining := entries[:0]
	for _, e := range entries {
		if now.Sub(e.LastModified) > c.ttl {
			os.RemoveAll(e.Path)
			total -= e.Size
		} else {
			remaining = append(remaining, e)
		}
	}
	entries = remaining

	if total > c.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].LastModified.Before(entries[j].LastModified)
		})
		for _, e := range entries {
			if total <= c.maxSize {
				break
			}
			os.RemoveAll(e.Path)
			total -= e.Size
		}
	}
	return nil
}

func (c *SnapshotCache) WriteMeta(dashboard string, meta SnapshotMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.entryDir(dashboard), metaFile), data, 0o644)
}

func (c *SnapshotCache) ReadMeta(dashboard string) (*SnapshotMeta, error) {
	data, err := os.ReadFile(filepath.Join(c.entryDir(dashboard), metaFile))
	if err != nil {
		return nil, err
	}
	var meta SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ListEntries returns every cached snapshot, sorted by dashboard name.
func (c *SnapshotCache) ListEntries() ([]Entry, error) {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var result []Entry
	for _, d := range dirs {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), entryPrefix) {
			continue
		}
		name := strings.TrimPrefix(d.Name(), entryPrefix)
		path := filepath.Join(c.dir, d.Name())

		entry := Entry{Path: path}
		if meta, err := c.ReadMeta(name); err == nil {
			entry.SnapshotMeta = *meta
		}
		entry.Dashboard = name
		entry.Size, entry.LastModified = dirStats(path)
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Dashboard < result[j].Dashboard })
	return result, nil
}

func (c *SnapshotCache) DeleteEntry(dashboard string) error {
	return os.RemoveAll(c.entryDir(dashboard))
}

func (c *SnapshotCache) DeleteAll() error {
	entries, err := c.ListEntries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(e.Path); err != nil {
			return err
		}
	}
	return nil
}

// TotalSize returns the size of all snapshots in bytes.
func (c *SnapshotCache) TotalSize() (int64, error) {
	entries, err := c.ListEntries()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}

// dirStats returns the total file size under path and the newest mtime.
func dirStats(path string) (int64, time.Time) {
	var size int64
	var latest time.Time
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return size, latest
}
