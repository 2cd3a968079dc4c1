package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDashboardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboards",
		Short: "List the configured dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Title", "Columns", "Default sort", "Source"})
			for _, d := range e.cfg.Dashboards {
				cols := "inferred"
				if n := len(d.Columns); n > 0 {
					cols = fmt.Sprint(n)
				}
				sort := ""
				if s := d.Sort(); s.Active() {
					sort = fmt.Sprintf("%s %s", s.Column, s.Direction)
				}
				t.AppendRow(table.Row{d.Name, d.Label(), cols, sort, d.Source})
			}
			t.Render()
			return nil
		},
	}
}
