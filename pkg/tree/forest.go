// forest.go - Builds the in-memory folder forest from flat store records.

// Package tree turns flat folder records into a forest and derives the
// visible, filtered and sorted projections the list front ends render.
// Everything here is pure: no I/O, no locking, no logging.
package tree

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// Node is one folder in the in-memory forest.
type Node struct {
	Folder   *model.Node // Record this node was built from
	Children []*Node     // Ordered child nodes
	Expanded bool        // Display state; starts from Folder.IsExpanded
	Depth    int         // Nesting level (0 = root)
	Parent   *Node       // Back-reference for navigation

	// origin is the unfiltered node a filtered copy was made from.
	origin *Node
}

// ID returns the folder id, or "" for a nil node.
func (n *Node) ID() string {
	if n == nil || n.Folder == nil {
		return ""
	}
	return n.Folder.ID
}

// Title returns the folder title.
func (n *Node) Title() string {
	if n == nil || n.Folder == nil {
		return ""
	}
	return n.Folder.Title
}

// Origin returns the unfiltered node this node stands for.
func (n *Node) Origin() *Node {
	if n.origin != nil {
		return n.origin
	}
	return n
}

// HasChildren reports whether the folder has children in the unfiltered
// forest, even when a search hides all of them.
func (n *Node) HasChildren() bool {
	return len(n.Origin().Children) > 0
}

// ProblemKind classifies structural integrity problems found while loading.
type ProblemKind int

const (
	ProblemDanglingParent ProblemKind = iota // parent id not in the record set
	ProblemCycle                             // record is part of, or below, a parent cycle
	ProblemDuplicateID                       // a second record reused an id
	ProblemInvalid                           // record failed validation
)

// String returns a short label for the kind.
func (k ProblemKind) String() string {
	switch k {
	case ProblemDanglingParent:
		return "dangling-parent"
	case ProblemCycle:
		return "cycle"
	case ProblemDuplicateID:
		return "duplicate-id"
	case ProblemInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Problem describes one record the loader had to treat defensively.
type Problem struct {
	Kind     ProblemKind
	ID       string
	ParentID string
}

// Error implements error so problems can be joined and logged directly.
func (p Problem) Error() string {
	switch p.Kind {
	case ProblemDanglingParent:
		return fmt.Sprintf("folder %s: parent %s does not exist, shown as root", p.ID, p.ParentID)
	case ProblemCycle:
		return fmt.Sprintf("folder %s: ancestry loops back on itself, subtree dropped", p.ID)
	case ProblemDuplicateID:
		return fmt.Sprintf("folder %s: duplicate id, later record ignored", p.ID)
	default:
		return fmt.Sprintf("folder %s: %s", p.ID, p.Kind)
	}
}

// Forest is the materialized folder hierarchy.
type Forest struct {
	Roots    []*Node
	Index    map[string]*Node
	Problems []Problem
}

// Len returns the number of folders in the forest.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Index)
}

// Lookup returns the node for id, or nil.
func (f *Forest) Lookup(id string) *Node {
	if f == nil {
		return nil
	}
	return f.Index[id]
}

// Build materializes the forest from every record in the store.
//
// Records without a parent are roots. A record whose parent is missing is
// shown as a root and reported. Records that are never reached from a root
// sit on (or below) a parent cycle; they are dropped and reported. Siblings
// come out in manual order.
func Build(records []model.Node) *Forest {
	f := &Forest{Index: make(map[string]*Node, len(records))}
	if len(records) == 0 {
		return f
	}

	// Step 1: index records, first one wins on duplicate ids
	byID := make(map[string]*model.Node, len(records))
	var ordered []*model.Node
	for i := range records {
		rec := records[i]
		if rec.ID == "" {
			f.Problems = append(f.Problems, Problem{Kind: ProblemInvalid, ID: rec.ID})
			continue
		}
		if _, dup := byID[rec.ID]; dup {
			f.Problems = append(f.Problems, Problem{Kind: ProblemDuplicateID, ID: rec.ID})
			continue
		}
		byID[rec.ID] = &rec
		ordered = append(ordered, &rec)
	}

	// Step 2: parent -> children index, roots and orphans
	childrenOf := make(map[string][]*model.Node)
	var roots []*model.Node
	for _, rec := range ordered {
		switch {
		case rec.ParentID == "":
			roots = append(roots, rec)
		case byID[rec.ParentID] == nil:
			f.Problems = append(f.Problems, Problem{Kind: ProblemDanglingParent, ID: rec.ID, ParentID: rec.ParentID})
			roots = append(roots, rec)
		default:
			childrenOf[rec.ParentID] = append(childrenOf[rec.ParentID], rec)
		}
	}

	// Step 3: build downward from the roots
	sortRecords(roots)
	for _, rec := range roots {
		f.Roots = append(f.Roots, f.buildNode(rec, 0, nil, childrenOf))
	}

	// Step 4: anything unreached hangs off a cycle
	for _, rec := range ordered {
		if _, ok := f.Index[rec.ID]; !ok {
			f.Problems = append(f.Problems, Problem{Kind: ProblemCycle, ID: rec.ID, ParentID: rec.ParentID})
		}
	}

	return f
}

// buildNode recursively builds a node and its children. Every record has a
// single parent, so a record reached from a root is reached exactly once.
func (f *Forest) buildNode(rec *model.Node, depth int, parent *Node, childrenOf map[string][]*model.Node) *Node {
	node := &Node{
		Folder:   rec,
		Expanded: rec.IsExpanded,
		Depth:    depth,
		Parent:   parent,
	}
	f.Index[rec.ID] = node

	children := childrenOf[rec.ID]
	sortRecords(children)
	for _, child := range children {
		node.Children = append(node.Children, f.buildNode(child, depth+1, node, childrenOf))
	}
	return node
}

// sortRecords orders sibling records by manual order, then creation, then id.
func sortRecords(recs []*model.Node) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Walk visits every node depth-first in pre-order, ignoring expansion.
// Returning false from fn skips that node's children.
func Walk(roots []*Node, fn func(*Node) bool) {
	for _, n := range roots {
		if n == nil {
			continue
		}
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Descendants returns the ids of every node below n.
func Descendants(n *Node) []string {
	var ids []string
	Walk(n.Children, func(d *Node) bool {
		ids = append(ids, d.ID())
		return true
	})
	return ids
}
