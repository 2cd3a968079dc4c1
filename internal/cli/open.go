package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/source"
	"github.com/cms-PdmV/PdmVPages/internal/tui"
)

func newOpenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [dashboard]",
		Short: "Browse the dashboards interactively",
		Example: `  pdmv-pages open rereco_ul
  pdmv-pages open rereco_ul --query 'dataset=JetHT&sort=events&dir=descending'
  pdmv-pages open --url 'https://cms-pdmv.cern.ch/pages/rereco_ul/?dataset=-ZeroBias'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOpen,
	}
	cmd.Flags().String("query", "", "Initial search and sort, as in a share link")
	cmd.Flags().String("url", "", "Open a share link; selects its dashboard")
	cmd.Flags().Bool("watch", true, "Reload local data files when they change")
	return cmd
}

func runOpen(cmd *cobra.Command, args []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	link, _ := cmd.Flags().GetString("url")
	initial := ""
	if len(args) == 1 {
		d, err := e.dashboard(args[0])
		if err != nil {
			return err
		}
		initial = d.Name
	}
	if link != "" {
		if initial == "" {
			initial = dashboardForURL(e.cfg.Dashboards, link)
		}
		if initial == "" {
			return fmt.Errorf("no configured dashboard matches %s", link)
		}
		query = link
	}
	if query != "" && initial == "" && len(e.cfg.Dashboards) > 0 {
		initial = e.cfg.Dashboards[0].Name
	}

	// stdout belongs to the terminal UI from here on.
	logFile, err := logging.OpenFile(e.cfg.LogFile)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer logFile.Close()
	level, _ := logging.ParseLevel(e.cfg.LogLevel)
	logger := logging.New(logFile, level)
	loader := source.NewLoader(nil, e.snapshots, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := tui.Options{
		Initial:   initial,
		Query:     query,
		Clipboard: clipboard.WriteAll,
		Browse:    e.browse(io.Discard, logFile),
		Logger:    logger,
	}

	watch := e.cfg.Watch
	if cmd.Flags().Changed("watch") {
		watch, _ = cmd.Flags().GetBool("watch")
	}
	if watch {
		w, err := source.NewWatcher(e.cfg.Dashboards, source.DefaultDebounce, logger)
		if err != nil {
			logger.Warn("file watching disabled", "error", err)
		} else {
			defer w.Close()
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("watcher stopped", "error", err)
				}
			}()
			opts.Watcher = w
		}
	}

	app := tui.NewApp(e.cfg, loader, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}

	if err := e.snapshots.Evict(); err != nil {
		logger.Warn("cache eviction failed", "error", err)
	}
	return nil
}
