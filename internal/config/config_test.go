package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdmv-pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate keeps the developer's own configuration out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestLoadPresetsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, []string{"main_bkg_ul", "rereco_ul", "transferor_stuckor", "rereco_ul_original", "rereco_ul_run3_original"}, cfg.Names())
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultCacheSizeMB, cfg.CacheSizeMB)
	assert.True(t, cfg.Watch)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "pdmv-pages.log"), cfg.LogFile)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
cache_ttl: 1h
case_sensitive: true
dashboards:
  - name: local
    title: Local copy
    source: data/data.json
    base_url: https://example.org/pages/local
    default_sort: events
    default_dir: desc
    columns:
      - key: dataset
      - key: events
        type: number
      - key: runs
        no_sort: true
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.CaseSensitive)
	require.Len(t, cfg.Dashboards, 1)

	d := cfg.Dashboards[0]
	assert.Equal(t, "Local copy", d.Label())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "data.json"), d.Source)
	assert.Equal(t, model.SortState{Column: "events", Direction: model.Descending}, d.Sort())

	schema := d.Schema()
	require.Len(t, schema, 3)
	assert.Equal(t, model.ColumnText, schema[0].Type)
	assert.Equal(t, model.ColumnNumber, schema[1].Type)
	assert.False(t, schema[2].Sortable)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "cache_size_mb: 10\nlog_level: warn\n")
	t.Setenv("PDMV_CACHE_SIZE_MB", "20")
	t.Setenv("PDMV_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("cache-size", 0, "")
	flags.String("query", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug", "--query=x"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.CacheSizeMB, "env beats file, unchanged flag is ignored")
	assert.Equal(t, "debug", cfg.LogLevel, "changed flag beats env")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	valid := Dashboard{Name: "a", Source: "a.json"}

	tests := []struct {
		name      string
		cfg       Config
		errSubstr string
	}{
		{"ok", Config{Dashboards: []Dashboard{valid}}, ""},
		{"no dashboards", Config{}, "no dashboards"},
		{"negative ttl", Config{Dashboards: []Dashboard{valid}, CacheTTL: -time.Second}, "cache_ttl"},
		{"missing name", Config{Dashboards: []Dashboard{{Source: "x"}}}, "name is required"},
		{"duplicate", Config{Dashboards: []Dashboard{valid, valid}}, "defined twice"},
		{"missing source", Config{Dashboards: []Dashboard{{Name: "a"}}}, "source is required"},
		{
			"reserved column",
			Config{Dashboards: []Dashboard{{Name: "a", Source: "x", Columns: []ColumnConfig{{Key: "sort"}}}}},
			"reserved",
		},
		{
			"bad type",
			Config{Dashboards: []Dashboard{{Name: "a", Source: "x", Columns: []ColumnConfig{{Key: "c", Type: "date"}}}}},
			"unknown type",
		},
		{
			"unsortable default",
			Config{Dashboards: []Dashboard{{Name: "a", Source: "x", DefaultSort: "c", Columns: []ColumnConfig{{Key: "c", NoSort: true}}}}},
			"not sortable",
		},
		{
			"timestamp path",
			Config{Dashboards: []Dashboard{{Name: "a", Source: "x", Timestamp: "../ts.txt"}}},
			"timestamp",
		},
		{
			"bad direction",
			Config{Dashboards: []Dashboard{{Name: "a", Source: "x", DefaultDir: "up"}}},
			"default_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestPresetsAreValid(t *testing.T) {
	cfg := Config{Dashboards: Presets()}
	require.NoError(t, cfg.Validate())

	d, ok := cfg.Dashboard("transferor_stuckor")
	require.True(t, ok)
	assert.Equal(t, "https://cms-pdmv.cern.ch/pages/transferor_stuckor", d.BaseURL)
	assert.Equal(t, DefaultTimestampFile, d.TimestampFile())

	d, ok = cfg.Dashboard("rereco_ul_original")
	require.True(t, ok)
	assert.Equal(t, "https://cms-pdmv.cern.ch/pages/rereco_ul/data_original_table.json", d.Source)
	assert.Equal(t, "original_table_timestamp.txt", d.TimestampFile())

	d, ok = cfg.Dashboard("rereco_ul_run3_original")
	require.True(t, ok)
	assert.Equal(t, "https://cms-pdmv.cern.ch/pages/rereco_ul_run3/data_original_table.json", d.Source)
}
