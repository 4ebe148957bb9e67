package tree

import "github.com/vanderheijden86/accordion/pkg/model"

// Flatten returns the visible nodes in display order: depth-first pre-order,
// descending into a node's children only when the node is expanded. A
// collapsed node hides its whole subtree whatever the descendants' own
// state. Flatten does not modify the forest.
func Flatten(roots []*Node) []*Node {
	var flat []*Node
	for _, root := range roots {
		flat = appendVisible(flat, root)
	}
	return flat
}

// appendVisible adds a node and its visible descendants to flat.
func appendVisible(flat []*Node, node *Node) []*Node {
	if node == nil {
		return flat
	}
	flat = append(flat, node)
	if node.Expanded {
		for _, child := range node.Children {
			flat = appendVisible(flat, child)
		}
	}
	return flat
}

// Rows converts a flattened list into render rows.
func Rows(flat []*Node) []model.Row {
	rows := make([]model.Row, 0, len(flat))
	for _, n := range flat {
		if n == nil || n.Folder == nil {
			continue
		}
		rows = append(rows, model.Row{
			ID:          n.Folder.ID,
			Title:       n.Folder.Title,
			Level:       n.Depth,
			HasChildren: n.HasChildren(),
			IsExpanded:  n.Expanded,
		})
	}
	return rows
}

// IndexOf returns the position of id in flat, or -1.
func IndexOf(flat []*Node, id string) int {
	for i, n := range flat {
		if n.ID() == id {
			return i
		}
	}
	return -1
}
