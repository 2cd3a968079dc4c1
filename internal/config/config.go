// Package config holds the configuration of pdmv-pages: which dashboards
// exist, where their data lives, and the cache and logging settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

const (
	DefaultCacheTTL    = 15 * time.Minute
	DefaultCacheSizeMB = 200
	DefaultLogLevel    = "info"

	// DefaultTimestampFile is written by the producers next to data.json.
	DefaultTimestampFile = "update_timestamp.txt"
)

type Config struct {
	Dashboards    []Dashboard   `koanf:"dashboards"`
	CacheDir      string        `koanf:"cache_dir"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	CacheSizeMB   int           `koanf:"cache_size_mb"`
	LogLevel      string        `koanf:"log_level"`
	LogFile       string        `koanf:"log_file"`
	CaseSensitive bool          `koanf:"case_sensitive"`
	Watch         bool          `koanf:"watch"`
	// Browser overrides the command used to open share links.
	Browser string `koanf:"browser"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Dashboard describes one status page.
type Dashboard struct {
	Name  string `koanf:"name"`
	Title string `koanf:"title"`
	// Source is the data.json location: a local path or an http(s) URL.
	Source string `koanf:"source"`
	// Timestamp names the file next to Source holding the last update time.
	Timestamp string `koanf:"timestamp"`
	// BaseURL is the public page that share links point to.
	BaseURL     string         `koanf:"base_url"`
	Columns     []ColumnConfig `koanf:"columns"`
	DefaultSort string         `koanf:"default_sort"`
	DefaultDir  string         `koanf:"default_dir"`
}

type ColumnConfig struct {
	Key   string `koanf:"key"`
	Title string `koanf:"title"`
	Type  string `koanf:"type"`
	// NoSort marks a column that cannot be sorted. Columns sort by default.
	NoSort bool `koanf:"no_sort"`
}

// Label is the tab title of the dashboard.
func (d Dashboard) Label() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// TimestampFile returns the name of the update timestamp file.
func (d Dashboard) TimestampFile() string {
	if d.Timestamp == "" {
		return DefaultTimestampFile
	}
	return d.Timestamp
}

// Schema returns the declared columns. It is nil when the dashboard leaves
// the schema to be inferred from its data.
func (d Dashboard) Schema() model.Schema {
	if len(d.Columns) == 0 {
		return nil
	}
	schema := make(model.Schema, len(d.Columns))
	for i, c := range d.Columns {
		typ := model.ColumnType(c.Type)
		if typ == "" {
			typ = model.ColumnText
		}
		schema[i] = model.Column{Key: c.Key, Title: c.Title, Type: typ, Sortable: !c.NoSort}
	}
	return schema
}

// Sort returns the default sort of the dashboard.
func (d Dashboard) Sort() model.SortState {
	if d.DefaultSort == "" {
		return model.SortState{}
	}
	dir, ok := model.ParseDirection(d.DefaultDir)
	if !ok {
		dir = model.Ascending
	}
	return model.SortState{Column: d.DefaultSort, Direction: dir}
}

// Dashboard looks up a dashboard by name.
func (c *Config) Dashboard(name string) (Dashboard, bool) {
	for _, d := range c.Dashboards {
		if d.Name == name {
			return d, true
		}
	}
	return Dashboard{}, false
}

// Names returns the dashboard names in configuration order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Dashboards))
	for i, d := range c.Dashboards {
		names[i] = d.Name
	}
	return names
}

func (c *Config) Validate() error {
	if len(c.Dashboards) == 0 {
		return errors.New("no dashboards configured")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.CacheSizeMB < 0 {
		return fmt.Errorf("cache_size_mb must not be negative, got %d", c.CacheSizeMB)
	}

	seen := make(map[string]bool)
	var errs []error
	for i, d := range c.Dashboards {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("dashboards[%d]: name is required", i))
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("dashboard %q is defined twice", d.Name))
		}
		seen[d.Name] = true
		if err := d.validate(); err != nil {
			errs = append(errs, fmt.Errorf("dashboard %q: %w", d.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (d Dashboard) validate() error {
	if strings.TrimSpace(d.Source) == "" {
		return errors.New("source is required")
	}
	if strings.ContainsAny(d.Timestamp, `/\`) {
		return fmt.Errorf("timestamp %q must be a file name next to the source", d.Timestamp)
	}
	keys := make(map[string]bool)
	for _, c := range d.Columns {
		switch {
		case c.Key == "":
			return errors.New("column key is required")
		case model.Reserved(c.Key):
			return fmt.Errorf("column %q uses a reserved share parameter name", c.Key)
		case keys[c.Key]:
			return fmt.Errorf("column %q is defined twice", c.Key)
		case c.Type != "" && !model.ColumnType(c.Type).Valid():
			return fmt.Errorf("column %q: unknown type %q (want text or number)", c.Key, c.Type)
		}
		keys[c.Key] = true
	}
	if d.DefaultDir != "" {
		if _, ok := model.ParseDirection(d.DefaultDir); !ok {
			return fmt.Errorf("default_dir %q is not ascending or descending", d.DefaultDir)
		}
	}
	if d.DefaultSort != "" && len(d.Columns) > 0 {
		col, ok := d.Schema().Column(d.DefaultSort)
		if !ok {
			return fmt.Errorf("default_sort %q is not a column", d.DefaultSort)
		}
		if !col.Sortable {
			return fmt.Errorf("default_sort %q is not sortable", d.DefaultSort)
		}
	}
	return nil
}
