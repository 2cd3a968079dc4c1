package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	appName   = "pdmv-pages"
	envPrefix = "PDMV_"
)

// flagKeys maps command line flags to configuration keys. Other flags are
// command options and never reach the configuration.
var flagKeys = map[string]string{
	"cache-dir":      "cache_dir",
	"cache-ttl":      "cache_ttl",
	"cache-size":     "cache_size_mb",
	"log-level":      "log_level",
	"log-file":       "log_file",
	"case-sensitive": "case_sensitive",
	"watch":          "watch",
	"browser":        "browser",
}

// findConfigFile returns the configuration file to read.
// Priority: explicit path > ./pdmv-pages.yaml > ./pdmv-pages.yml > user config dir.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{appName + ".yaml", appName + ".yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, appName, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// Load reads the configuration.
// Precedence (highest to lowest): changed flags > PDMV_ env vars > config file > defaults.
// When no dashboards are configured the built-in presets are used.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"cache_dir":      defaultCacheDir(),
		"cache_ttl":      DefaultCacheTTL.String(),
		"cache_size_mb":  DefaultCacheSizeMB,
		"log_level":      DefaultLogLevel,
		"case_sensitive": false,
		"watch":          true,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// PDMV_CACHE_DIR -> cache_dir
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if len(cfg.Dashboards) == 0 {
		cfg.Dashboards = Presets()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.CacheDir, appName+".log")
	}
	if used != "" {
		base := filepath.Dir(used)
		for i := range cfg.Dashboards {
			cfg.Dashboards[i].Source = resolveSource(cfg.Dashboards[i].Source, base)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// resolveSource makes a relative local source relative to the config file.
func resolveSource(source, baseDir string) string {
	if source == "" || strings.Contains(source, "://") || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(baseDir, source)
}
