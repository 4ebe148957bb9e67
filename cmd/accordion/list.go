package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/tree"
)

type listOptions struct {
	search []string
	json   bool
	all    bool
	roots  bool
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the folder list",
		Long: `Print the folders as the interactive list shows them: open folders show
their children, closed folders hide them.

Examples:
  accordion list
  accordion list --search an
  accordion list --all --json
  accordion list --roots --search fru`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.search, "search", nil, "only show folders matching every keyword, plus their ancestors")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print rows as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "show every folder, open or not")
	cmd.Flags().BoolVar(&opts.roots, "roots", false, "only top-level folders whose titles match every --search keyword")
	return cmd
}

func runList(cmd *cobra.Command, a *app, opts listOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, _, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case opts.roots:
		rows, err := rootRows(cmd, store, opts.search)
		if err != nil {
			return err
		}
		return printRows(out, rows, opts.json)

	case opts.all:
		rows, err := allRows(cmd, a, store, opts.search)
		if err != nil {
			return err
		}
		return printRows(out, rows, opts.json)
	}

	list, err := a.openList(ctx, store, false)
	if err != nil {
		return err
	}
	for _, p := range list.Problems() {
		a.log.Warn(p.Error())
	}
	if len(opts.search) > 0 {
		if err := list.SetSearch(ctx, opts.search...); err != nil {
			return err
		}
	}
	return printRows(out, list.CurrentRows(), opts.json)
}

// rootRows lists the top-level folders whose titles contain every keyword.
// The store narrows by the first keyword; the rest are matched here.
func rootRows(cmd *cobra.Command, store datasource.Store, search []string) ([]model.Row, error) {
	first := ""
	for _, k := range search {
		if k = strings.TrimSpace(k); k != "" {
			first = k
			break
		}
	}
	recs, err := store.FetchRoots(cmd.Context(), first)
	if err != nil {
		return nil, err
	}
	m := tree.NewMatcher(search...)
	rows := make([]model.Row, 0, len(recs))
	for _, r := range recs {
		if !m.Empty() && !m.Match(r.Title) {
			continue
		}
		rows = append(rows, model.Row{ID: r.ID, Title: r.Title, IsExpanded: r.IsExpanded})
	}
	return rows, nil
}

// allRows renders every folder regardless of expansion, in display order.
func allRows(cmd *cobra.Command, a *app, store datasource.Store, search []string) ([]model.Row, error) {
	recs, err := store.List(cmd.Context())
	if err != nil {
		return nil, err
	}

	forest := tree.Build(recs)
	for _, p := range forest.Problems {
		a.log.Warn(p.Error())
	}
	roots := forest.Roots
	if m := tree.NewMatcher(search...); !m.Empty() {
		roots = tree.Filter(roots, m)
	}
	tree.Sort(roots, a.cfg.Sort.Key, model.DirectionOf(a.cfg.Sort.Ascending))

	var rows []model.Row
	tree.Walk(roots, func(n *tree.Node) bool {
		rows = append(rows, model.Row{
			ID:          n.ID(),
			Title:       n.Title(),
			Level:       n.Depth,
			HasChildren: n.HasChildren(),
			IsExpanded:  n.Expanded,
		})
		return true
	})
	return rows, nil
}

func printRows(w io.Writer, rows []model.Row, asJSON bool) error {
	if asJSON {
		if rows == nil {
			rows = []model.Row{}
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encode rows: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No folders.")
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s%s %s  [%s]\n", strings.Repeat("  ", r.Level), marker(r), r.Title, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func marker(r model.Row) string {
	switch {
	case !r.HasChildren:
		return "•"
	case r.IsExpanded:
		return "▾"
	default:
		return "▸"
	}
}
