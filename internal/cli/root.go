// Package cli provides the pdmv-pages command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/cache"
	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/source"
)

var cfgFile string

// envKey is used to store the runtime environment in the command context.
type envKey struct{}

// env is what every command needs once the configuration is read.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	snapshots *cache.SnapshotCache
	loader    *source.Loader
}

// NewRootCmd creates and returns the root command. Without a subcommand it
// opens the interactive view.
func NewRootCmd(version string) *cobra.Command {
	open := newOpenCommand()

	rootCmd := &cobra.Command{
		Use:   "pdmv-pages [dashboard]",
		Short: "Search, sort and share the PdmV monitoring tables",
		Long: `pdmv-pages shows the PdmV monitoring dashboards (main_bkg_ul, rereco_ul,
transferor_stuckor, ...) as searchable, sortable tables.

Every column has its own search field. The current searches and sort are
encoded in a share link that reproduces the same view for anyone who opens it.`,
		Version:           version,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: setup,
		RunE:              open.RunE,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./pdmv-pages.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose output (debug logging)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-file", "", "Log file for the interactive view")
	pf.String("cache-dir", "", "Directory for cached dashboard data")
	pf.Duration("cache-ttl", 0, "How long fetched data is reused without refetching")
	pf.Int("cache-size", 0, "Maximum cache size in MB")
	pf.Bool("case-sensitive", false, "Match column searches case-sensitively")
	pf.String("browser", "", "Command used to open links")

	// The root command shares the open command's flags.
	rootCmd.Flags().AddFlagSet(open.Flags())

	rootCmd.AddCommand(open)
	rootCmd.AddCommand(newPrintCommand())
	rootCmd.AddCommand(newShareCommand())
	rootCmd.AddCommand(newDashboardsCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newCacheCommand())
	rootCmd.AddCommand(newVersionCommand(version))
	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd := NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "__complete" {
		return nil
	}

	cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}

	snapshots, err := cache.NewSnapshotCache(cfg.CacheDir, cfg.CacheSizeMB, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		snapshots: snapshots,
		loader:    source.NewLoader(nil, snapshots, logger),
	}
	cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
	return nil
}

func getEnv(cmd *cobra.Command) (*env, error) {
	if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
		return e, nil
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// dashboard finds a configured dashboard by name, suggesting close names
// when there is none.
func (e *env) dashboard(name string) (config.Dashboard, error) {
	if d, ok := e.cfg.Dashboard(name); ok {
		return d, nil
	}
	names := e.cfg.Names()
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		return config.Dashboard{}, fmt.Errorf("unknown dashboard %q (did you mean %s?)", name, matches[0].Str)
	}
	return config.Dashboard{}, fmt.Errorf("unknown dashboard %q (available: %v)", name, names)
}

func (e *env) browse(stdout, stderr io.Writer) func(string) error {
	b := browser.New(e.cfg.Browser, stdout, stderr)
	return b.Browse
}
