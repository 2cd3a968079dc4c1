// Package source loads the data.json of a dashboard, together with the
// timestamp file written next to it, from disk or over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cms-PdmV/PdmVPages/internal/cache"
	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/model"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"

	// maxPayload bounds a single data.json download.
	maxPayload = 256 << 20
)

var ErrNotFound = errors.New("data not found")

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

type Loader struct {
	client    *http.Client
	snapshots *cache.SnapshotCache
	logger    *slog.Logger
}

// NewLoader returns a loader. snapshots may be nil to disable caching of
// remote sources.
func NewLoader(client *http.Client, snapshots *cache.SnapshotCache, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Loader{
		client:    client,
		snapshots: snapshots,
		logger:    logging.Default(logger).With("component", "source"),
	}
}

// origin tells where a snapshot came from.
type origin int

const (
	fromDisk origin = iota
	fromNetwork
	fromCache
	fromStaleCache
)

// Load reads the dashboard's records. Remote sources are served from a
// fresh cache snapshot when there is one; when fetching fails an expired
// snapshot is used and the dataset is marked stale.
func (l *Loader) Load(ctx context.Context, d config.Dashboard) (*model.Dataset, error) {
	return l.load(ctx, d, true)
}

// Reload is Load without the fresh-snapshot shortcut.
func (l *Loader) Reload(ctx context.Context, d config.Dashboard) (*model.Dataset, error) {
	return l.load(ctx, d, false)
}

func (l *Loader) load(ctx context.Context, d config.Dashboard, useCache bool) (*model.Dataset, error) {
	snap, from, err := l.read(ctx, d, useCache)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d.Name, err)
	}

	ds, err := decode(d, snap)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", d.Name, err)
	}
	ds.Stale = from == fromStaleCache

	if from == fromNetwork && l.snapshots != nil {
		meta := cache.SnapshotMeta{Source: d.Source, Records: len(ds.Records), FetchedAt: time.Now()}
		if err := l.snapshots.Store(d.Name, *snap, meta); err != nil {
			l.logger.Warn("caching snapshot failed", "dashboard", d.Name, "error", err)
		}
	}
	l.logger.Info("dashboard loaded", "dashboard", d.Name, "records", len(ds.Records), "stale", ds.Stale)
	return ds, nil
}

func (l *Loader) read(ctx context.Context, d config.Dashboard, useCache bool) (*cache.Snapshot, origin, error) {
	if !IsRemote(d.Source) {
		snap, err := readLocal(d.Source, d.TimestampFile())
		return snap, fromDisk, err
	}
	if useCache && l.snapshots != nil && l.snapshots.Fresh(d.Name) {
		if snap, err := l.snapshots.Load(d.Name); err == nil {
			l.logger.Debug("using cached snapshot", "dashboard", d.Name)
			return snap, fromCache, nil
		}
	}

	snap, err := l.fetch(ctx, d.Source, d.TimestampFile())
	if err == nil {
		return snap, fromNetwork, nil
	}
	if l.snapshots == nil {
		return nil, fromNetwork, err
	}
	cached, cerr := l.snapshots.Load(d.Name)
	if cerr != nil {
		return nil, fromNetwork, err
	}
	l.logger.Warn("source unreachable, using stale snapshot", "dashboard", d.Name, "error", err)
	return cached, fromStaleCache, nil
}

func (l *Loader) fetch(ctx context.Context, location, timestamp string) (*cache.Snapshot, error) {
	data, err := l.get(ctx, location)
	if err != nil {
		return nil, err
	}
	snap := &cache.Snapshot{Data: data}

	// The timestamp is optional.
	if ts, err := l.get(ctx, siblingURL(location, timestamp)); err == nil {
		snap.Timestamp = strings.TrimSpace(string(ts))
	}
	return snap, nil
}

func (l *Loader) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", location, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", location, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: unexpected status %s", location, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// siblingURL replaces the last path element of location with name.
func siblingURL(location, name string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	u.Path = path.Join(path.Dir(u.Path), name)
	u.RawQuery = ""
	return u.String()
}

func readLocal(location, timestamp string) (*cache.Snapshot, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", location, ErrNotFound)
		}
		return nil, err
	}
	snap := &cache.Snapshot{Data: data}
	if ts, err := os.ReadFile(filepath.Join(filepath.Dir(location), timestamp)); err == nil {
		snap.Timestamp = strings.TrimSpace(string(ts))
	}
	return snap, nil
}

func decode(d config.Dashboard, snap *cache.Snapshot) (*model.Dataset, error) {
	records, keys, err := model.ParseRecords(snap.Data)
	if err != nil {
		return nil, fmt.Errorf("parse data.json: %w", err)
	}
	schema := d.Schema()
	if schema == nil {
		schema = model.InferSchema(keys, records)
	}
	return &model.Dataset{
		Name:      d.Name,
		Schema:    schema,
		Records:   records,
		UpdatedAt: ParseTimestamp(snap.Timestamp),
		Source:    d.Source,
	}, nil
}

// ParseTimestamp reads the producer's timestamp, written in local time.
// It returns the zero time when ts is empty or malformed.
func ParseTimestamp(ts string) time.Time {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(ts), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
