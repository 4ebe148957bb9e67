package tree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// Sort orders the roots by key and direction, and every sibling group below
// them with the same comparator. Ties fall back to creation time and then
// id, always ascending, so the result is deterministic.
func Sort(roots []*Node, key model.SortKey, dir model.SortDirection) {
	s := newSorter(key, dir)
	s.sort(roots)
	Walk(roots, func(n *Node) bool {
		s.sort(n.Children)
		return true
	})
}

type sorter struct {
	key  model.SortKey
	dir  model.SortDirection
	coll *collate.Collator
}

func newSorter(key model.SortKey, dir model.SortDirection) *sorter {
	s := &sorter{key: key, dir: dir}
	if key == model.SortTitle {
		s.coll = collate.New(language.Und, collate.IgnoreCase)
	}
	return s
}

func (s *sorter) sort(nodes []*Node) {
	if len(nodes) <= 1 {
		return
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i] == nil || nodes[j] == nil {
			return nodes[i] != nil
		}
		return s.less(nodes[i].Folder, nodes[j].Folder)
	})
}

func (s *sorter) less(a, b *model.Node) bool {
	if c := s.compare(a, b); c != 0 {
		if s.dir == model.SortDescending {
			return c > 0
		}
		return c < 0
	}
	// Tiebreak: creation then id, ascending in both directions
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// compare returns the ascending comparison of a and b for the active key.
func (s *sorter) compare(a, b *model.Node) int {
	switch s.key {
	case model.SortCreated:
		return a.CreatedAt.Compare(b.CreatedAt)
	case model.SortModified:
		return a.ModifiedAt.Compare(b.ModifiedAt)
	case model.SortTitle:
		return s.coll.CompareString(a.Title, b.Title)
	default:
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	}
}
