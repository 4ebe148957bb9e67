package tree

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher decides whether a folder title matches the search keywords.
// Matching is a case-insensitive substring test using Unicode case folding.
// Several keywords must all be present (the top and bottom search fields
// are combined with AND). A Matcher is not safe for concurrent use.
type Matcher struct {
	keywords []string
	fold     cases.Caser
}

// NewMatcher builds a matcher from the non-blank keywords.
func NewMatcher(keywords ...string) *Matcher {
	m := &Matcher{fold: cases.Fold()}
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m.keywords = append(m.keywords, m.fold.String(k))
	}
	return m
}

// Empty reports whether there is nothing to filter by.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.keywords) == 0
}

// Keywords returns the folded keywords.
func (m *Matcher) Keywords() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keywords...)
}

// Match reports whether title contains every keyword. An empty matcher
// matches nothing; callers skip filtering instead.
func (m *Matcher) Match(title string) bool {
	if m.Empty() {
		return false
	}
	folded := m.fold.String(title)
	for _, k := range m.keywords {
		if !strings.Contains(folded, k) {
			return false
		}
	}
	return true
}

// Filter narrows the forest to folders matching m plus their ancestors.
//
// Children are filtered first; a folder survives when its own title matches
// or when at least one descendant survived. A folder that survives with
// surviving descendants is forced open, on the forest node itself, so a
// search always reveals its matches whatever the previous collapse state.
//
// The returned roots are copies holding only surviving children; the
// forest keeps its full shape. With an empty matcher the roots are returned
// unchanged.
func Filter(roots []*Node, m *Matcher) []*Node {
	if m.Empty() {
		return roots
	}
	var kept []*Node
	for _, root := range roots {
		if n := filterNode(root, m, nil); n != nil {
			kept = append(kept, n)
		}
	}
	return kept
}

func filterNode(node *Node, m *Matcher, parent *Node) *Node {
	if node == nil || node.Folder == nil {
		return nil
	}
	clone := &Node{
		Folder: node.Folder,
		Depth:  node.Depth,
		Parent: parent,
		origin: node.Origin(),
	}
	for _, child := range node.Children {
		if c := filterNode(child, m, clone); c != nil {
			clone.Children = append(clone.Children, c)
		}
	}

	if len(clone.Children) > 0 {
		node.Expanded = true
	} else if !m.Match(node.Folder.Title) {
		return nil
	}
	clone.Expanded = node.Expanded
	return clone
}
