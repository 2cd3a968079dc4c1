package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/model"
)

func newShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share <dashboard>",
		Short: "Print the link to a dashboard view",
		Long: `Print the link that opens a dashboard with the given column searches and
sort. Columns are checked against the dashboard; the data is only fetched
when the dashboard does not declare its columns.`,
		Example: `  pdmv-pages share rereco_ul -f dataset=JetHT --sort events --desc
  pdmv-pages share main_bkg_ul -f status=-done --open`,
		Args: cobra.ExactArgs(1),
		RunE: runShare,
	}
	addViewFlags(cmd)
	cmd.Flags().Bool("open", false, "Open the link in the browser")
	return cmd
}

func runShare(cmd *cobra.Command, args []string) error {
	e, err := getEnv(cmd)
	if err != nil {
		return err
	}
	d, err := e.dashboard(args[0])
	if err != nil {
		return err
	}

	data := &model.Dataset{Name: d.Name, Schema: d.Schema()}
	if data.Schema == nil {
		if data, err = e.loader.Load(cmd.Context(), d); err != nil {
			return err
		}
	}

	b, err := buildBoard(cmd, e, d, data)
	if err != nil {
		return err
	}
	link := b.ShareURL()
	fmt.Fprintln(cmd.OutOrStdout(), link)

	if open, _ := cmd.Flags().GetBool("open"); open {
		return e.browse(cmd.OutOrStdout(), cmd.ErrOrStderr())(link)
	}
	return nil
}

// dashboardForURL returns the dashboard a share link belongs to: the one
// with the longest base URL prefixing it, or else the one named in its path.
func dashboardForURL(dashboards []config.Dashboard, link string) string {
	best, bestLen := "", 0
	for _, d := range dashboards {
		base := strings.TrimSuffix(d.BaseURL, "/")
		if base == "" || len(base) <= bestLen || !strings.HasPrefix(link, base) {
			continue
		}
		if rest := link[len(base):]; rest == "" || strings.ContainsRune("/?#", rune(rest[0])) {
			best, bestLen = d.Name, len(base)
		}
	}
	if best != "" {
		return best
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		for _, d := range dashboards {
			if seg == d.Name || seg == d.Name+".html" {
				return d.Name
			}
		}
	}
	return ""
}
