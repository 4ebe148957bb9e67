package datasource

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// filterRoots keeps the roots whose title contains filter, ignoring case.
// Records come back in manual order.
func filterRoots(recs []model.Node, filter string) []model.Node {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter))
	var out []model.Node
	for _, r := range recs {
		if !r.IsRoot() {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(r.Title), needle) {
			continue
		}
		out = append(out, r)
	}
	sortByOrder(out)
	return out
}

func sortByOrder(recs []model.Node) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Order != recs[j].Order {
			return recs[i].Order < recs[j].Order
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
}

// subtree returns id and every id below it. Parent loops are cut by the
// visited set.
func subtree(recs []model.Node, id string) []string {
	children := make(map[string][]string)
	for _, r := range recs {
		if r.ParentID != "" {
			children[r.ParentID] = append(children[r.ParentID], r.ID)
		}
	}
	seen := map[string]bool{id: true}
	out := []string{id}
	for i := 0; i < len(out); i++ {
		for _, c := range children[out[i]] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func validateAll(nodes []model.Node) error {
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}
