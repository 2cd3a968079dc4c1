package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the cached dashboard data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached snapshots",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [dashboard...]",
		Short: "Delete cached snapshots (all of them without arguments)",
		RunE:  runCacheClear,
	})
	return cmd
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}
	entries, err := e.snapshots.ListEntries()
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No cached data in %s\n", e.snapshots.Dir())
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Dashboard", "Records", "Size", "Fetched", "Fresh"})
	var total int64
	for _, en := range entries {
		fetched := ""
		if !en.FetchedAt.IsZero() {
			fetched = en.FetchedAt.Local().Format(time.DateTime)
		}
		fresh := "no"
		if e.snapshots.Fresh(en.Dashboard) {
			fresh = "yes"
		}
		t.AppendRow(table.Row{en.Dashboard, en.Records, formatSize(en.Size), fetched, fresh})
		total += en.Size
	}
	t.AppendFooter(table.Row{"", "", formatSize(total), "", ""})
	t.Render()
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		if err := e.snapshots.DeleteAll(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	}
	for _, name := range args {
		if err := e.snapshots.DeleteEntry(name); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", name)
	}
	return nil
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	}
	return fmt.Sprintf("%d B", bytes)
}
