package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cms-PdmV/PdmVPages/internal/board"
	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/share"
)

// addViewFlags registers the flags that describe a view of a dashboard.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "Search and sort as in a share link (a full link works too)")
	cmd.Flags().StringArrayP("filter", "f", nil, "Column search as key=pattern (repeatable)")
	cmd.Flags().String("sort", "", "Column to sort by")
	cmd.Flags().Bool("desc", false, "Sort descending")
}

// buildBoard sets up a board for d from the view flags. Flags are applied
// on top of --query, in the order given.
func buildBoard(cmd *cobra.Command, e *env, d config.Dashboard, data *model.Dataset) (*board.Board, error) {
	query, _ := cmd.Flags().GetString("query")
	filters, _ := cmd.Flags().GetStringArray("filter")
	sortCol, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")

	b := board.New(data, share.NewMemoryAddress(""), board.Options{
		Search:      search.Options{CaseSensitive: e.cfg.CaseSensitive},
		DefaultSort: d.Sort(),
		BaseURL:     d.BaseURL,
		Logger:      e.logger,
	})
	if query != "" {
		for _, is := range b.Restore(query) {
			e.logger.Warn("ignoring query parameter", "issue", is.String())
		}
	}

	for _, f := range filters {
		key, pattern, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --filter %q, want key=pattern", f)
		}
		if err := b.SetQuery(strings.TrimSpace(key), pattern); err != nil {
			return nil, err
		}
	}
	for col, err := range b.PatternErrors() {
		e.logger.Warn("column matches nothing", "column", col, "error", err)
	}

	if sortCol != "" {
		dir := model.Ascending
		if desc {
			dir = model.Descending
		}
		if !b.SetSort(sortCol, dir) {
			return nil, fmt.Errorf("cannot sort by %q", sortCol)
		}
	} else if desc {
		if s := b.Sort(); s.Active() {
			b.SetSort(s.Column, model.Descending)
		}
	}
	return b, nil
}
