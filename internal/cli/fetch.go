package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/ops"
)

const fetchConcurrency = 3

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [dashboard...]",
		Short: "Download fresh data into the cache",
		Long: `Download the data of the given dashboards (all of them without arguments)
and store it in the cache, so that later commands work offline.`,
		RunE: runFetch,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}
	dashboards, err := ops.Select(e.cfg.Dashboards, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := ops.RefreshAll(cmd.Context(), e.loader, dashboards, fetchConcurrency,
		func(done, total int, name string, err error) {
			if err != nil {
				fmt.Fprintf(out, "[%d/%d] %s: %v\n", done, total, name, err)
				return
			}
			fmt.Fprintf(out, "[%d/%d] %s\n", done, total, name)
		})
	if err != nil {
		return err
	}
	if err := e.snapshots.Evict(); err != nil {
		e.logger.Warn("cache eviction failed", "error", err)
	}

	fmt.Fprintf(out, "%d fetched, %d failed", res.Completed, res.Failed)
	if res.Stale > 0 {
		fmt.Fprintf(out, ", %d served from an expired copy", res.Stale)
	}
	fmt.Fprintln(out)
	if res.Failed > 0 {
		return errors.Join(res.Errors...)
	}
	return nil
}
