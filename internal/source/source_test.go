package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cms-PdmV/PdmVPages/internal/cache"
	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/model"
)

const payload = `[
	{"dataset": "/ZeroBias/Run2022C/RAW", "events": 120, "runs": [1, 2]},
	{"dataset": "/JetHT/Run2022D/RAW", "events": null}
]`

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(src, []byte(payload), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultTimestampFile), []byte("2024-03-01 10:20:30\n"), 0o644))

	l := NewLoader(nil, nil, nil)
	ds, err := l.Load(context.Background(), config.Dashboard{Name: "local", Source: src})
	require.NoError(t, err)

	assert.Equal(t, "local", ds.Name)
	assert.Len(t, ds.Records, 2)
	assert.Equal(t, []string{"dataset", "events", "runs"}, ds.Schema.Keys())
	col, _ := ds.Schema.Column("events")
	assert.Equal(t, model.ColumnNumber, col.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.Local), ds.UpdatedAt)
	assert.False(t, ds.Stale)
}

func TestLoadLocalTableTimestamp(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data_original_table.json")
	require.NoError(t, os.WriteFile(src, []byte(payload), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultTimestampFile), []byte("2020-01-01 00:00:00"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "original_table_timestamp.txt"), []byte("2024-05-06 07:08:09"), 0o644))

	d := config.Dashboard{Name: "rereco_ul_original", Source: src, Timestamp: "original_table_timestamp.txt"}
	ds, err := NewLoader(nil, nil, nil).Load(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local), ds.UpdatedAt)
}

func TestLoadRemoteTableTimestamp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pages/rereco_ul/data_original_table.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})
	mux.HandleFunc("/pages/rereco_ul/update_timestamp.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2020-01-01 00:00:00"))
	})
	mux.HandleFunc("/pages/rereco_ul/original_table_timestamp.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2024-05-06 07:08:09"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := config.Dashboard{
		Name:      "rereco_ul_original",
		Source:    srv.URL + "/pages/rereco_ul/data_original_table.json",
		Timestamp: "original_table_timestamp.txt",
	}
	ds, err := NewLoader(srv.Client(), nil, nil).Load(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local), ds.UpdatedAt)
}

func TestLoadLocalDeclaredSchema(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(src, []byte(payload), 0o644))

	d := config.Dashboard{Name: "x", Source: src, Columns: []config.ColumnConfig{{Key: "dataset"}, {Key: "status"}}}
	ds, err := NewLoader(nil, nil, nil).Load(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, []string{"dataset", "status"}, ds.Schema.Keys())
	assert.True(t, ds.Records[0].Get("status").IsEmpty())
	assert.True(t, ds.UpdatedAt.IsZero(), "missing timestamp file")
}

func TestLoadLocalMissing(t *testing.T) {
	_, err := NewLoader(nil, nil, nil).Load(context.Background(), config.Dashboard{Name: "x", Source: "/does/not/exist.json"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadLocalBadJSON(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"not": "an array"}`), 0o644))

	_, err := NewLoader(nil, nil, nil).Load(context.Background(), config.Dashboard{Name: "x", Source: src})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse data.json")
}

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pages/rereco_ul/data.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	})
	mux.HandleFunc("/pages/rereco_ul/update_timestamp.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2024-03-01 10:20:30"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadRemoteUsesCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	snapshots, err := cache.NewSnapshotCache(t.TempDir(), 10, time.Hour)
	require.NoError(t, err)

	l := NewLoader(srv.Client(), snapshots, nil)
	d := config.Dashboard{Name: "rereco_ul", Source: srv.URL + "/pages/rereco_ul/data.json"}

	ds, err := l.Load(context.Background(), d)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 2)
	assert.False(t, ds.UpdatedAt.IsZero())

	meta, err := snapshots.ReadMeta("rereco_ul")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Records)

	_, err = l.Load(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second load should come from the cache")

	_, err = l.Reload(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "reload bypasses the cache")
}

func TestLoadRemoteFallsBackToStaleSnapshot(t *testing.T) {
	snapshots, err := cache.NewSnapshotCache(t.TempDir(), 10, time.Hour)
	require.NoError(t, err)
	require.NoError(t, snapshots.Store("rereco_ul", cache.Snapshot{Data: []byte(payload)}, cache.SnapshotMeta{}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client(), snapshots, nil)
	d := config.Dashboard{Name: "rereco_ul", Source: srv.URL + "/data.json"}

	ds, err := l.Reload(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, ds.Stale)
	assert.Len(t, ds.Records, 2)
}

func TestLoadRemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewLoader(srv.Client(), nil, nil).Load(context.Background(), config.Dashboard{Name: "x", Source: srv.URL + "/data.json"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSiblingURL(t *testing.T) {
	got := siblingURL("https://example.org/pages/x/data.json?v=2", config.DefaultTimestampFile)
	assert.Equal(t, "https://example.org/pages/x/update_timestamp.txt", got)
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("yesterday").IsZero())
	assert.Equal(t, 2024, ParseTimestamp(" 2024-03-01 10:20:30 ").Year())
}
