package cli

import (
	"os"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/render"
)

func newPrintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print <dashboard>",
		Short: "Print the rows of a dashboard that match the given searches",
		Example: `  pdmv-pages print rereco_ul -f dataset=JetHT -f year=2018 --sort events --desc
  pdmv-pages print main_bkg_ul --query 'status=-done&mini_status=submitted' --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: runPrint,
	}
	addViewFlags(cmd)
	cmd.Flags().String("format", "table", "Output format (table|pretty|markdown|csv|json)")
	cmd.Flags().Int("limit", 0, "Print at most this many rows (0 for all)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return render.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runPrint(cmd *cobra.Command, args []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}
	d, err := e.dashboard(args[0])
	if err != nil {
		return err
	}

	data, err := e.loader.Load(cmd.Context(), d)
	if err != nil {
		return err
	}
	if data.Stale {
		e.logger.Warn("source unreachable, printing cached data", "dashboard", d.Name)
	}

	b, err := buildBoard(cmd, e, d, data)
	if err != nil {
		return err
	}

	rows := b.Rows()
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	e.logger.Debug("printing rows", "dashboard", d.Name, "rows", len(rows), "total", b.Total(), "query", b.ShareQuery())

	format, _ := cmd.Flags().GetString("format")
	opts := render.Options{Format: format}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(f) {
		opts.IsTTY = true
		if w, _, err := term.FromEnv().Size(); err == nil {
			opts.Width = w
		}
	}
	return render.Rows(cmd.OutOrStdout(), b.Schema(), rows, opts)
}
