package tree

import (
	"testing"
	"time"

	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/testutil"
)

// fruit returns the Fruit subtree of the sample data: Fruit{Apple, Banana,
// Citrus{Orange, Lemon}} with Citrus expanded.
func fruit() []model.Node {
	var out []model.Node
	for _, r := range testutil.SampleFolders() {
		if r.ID == "Vegetables" || r.ParentID == "Vegetables" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func equalIDs(t *testing.T, got []*Node, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

func hasProblem(f *Forest, kind ProblemKind, id string) bool {
	for _, p := range f.Problems {
		if p.Kind == kind && p.ID == id {
			return true
		}
	}
	return false
}

// TestBuildEmpty verifies Build handles an empty record set
func TestBuildEmpty(t *testing.T) {
	f := Build(nil)
	if len(f.Roots) != 0 {
		t.Errorf("expected 0 roots, got %d", len(f.Roots))
	}
	if f.Len() != 0 {
		t.Errorf("expected 0 nodes, got %d", f.Len())
	}
	if len(f.Problems) != 0 {
		t.Errorf("expected no problems, got %v", f.Problems)
	}
}

// TestBuildParentChild verifies nesting, depth and back-references
func TestBuildParentChild(t *testing.T) {
	f := Build(fruit())

	if len(f.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(f.Roots))
	}
	root := f.Roots[0]
	if root.ID() != "Fruit" || root.Depth != 0 {
		t.Errorf("unexpected root %s depth %d", root.ID(), root.Depth)
	}
	equalIDs(t, root.Children, "Apple", "Banana", "Citrus")

	citrus := f.Lookup("Citrus")
	if citrus == nil {
		t.Fatal("Citrus not indexed")
	}
	if citrus.Depth != 1 || citrus.Parent != root {
		t.Errorf("Citrus depth=%d parent=%s", citrus.Depth, citrus.Parent.ID())
	}
	if !citrus.Expanded {
		t.Error("Citrus should start expanded from its record")
	}
	if got := f.Lookup("Lemon").Depth; got != 2 {
		t.Errorf("expected Lemon at depth 2, got %d", got)
	}
	if f.Len() != 6 {
		t.Errorf("expected 6 nodes, got %d", f.Len())
	}
}

// TestBuildChildOrdering verifies siblings come out by order, then creation, then id
func TestBuildChildOrdering(t *testing.T) {
	at := testutil.BaseTime
	recs := []model.Node{
		{ID: "p", Title: "P"},
		{ID: "c", ParentID: "p", Order: 2, CreatedAt: at},
		{ID: "b", ParentID: "p", Order: 1, CreatedAt: at.Add(time.Hour)},
		{ID: "a", ParentID: "p", Order: 1, CreatedAt: at.Add(time.Hour)},
		{ID: "z", ParentID: "p", Order: 1, CreatedAt: at},
	}
	f := Build(recs)
	equalIDs(t, f.Lookup("p").Children, "z", "a", "b", "c")
}

// TestBuildOrphanParent verifies a missing parent turns the record into a root
func TestBuildOrphanParent(t *testing.T) {
	recs := []model.Node{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", ParentID: "gone", Order: 1},
	}
	f := Build(recs)

	equalIDs(t, f.Roots, "a", "b")
	if !hasProblem(f, ProblemDanglingParent, "b") {
		t.Errorf("expected dangling-parent problem for b, got %v", f.Problems)
	}
}

// TestBuildCycleDetection verifies cyclic records are dropped and reported
func TestBuildCycleDetection(t *testing.T) {
	recs := []model.Node{
		{ID: "root", Title: "Root"},
		{ID: "a", ParentID: "b"},
		{ID: "b", ParentID: "a"},
		{ID: "below", ParentID: "a"},
		{ID: "self", ParentID: "self"},
	}
	f := Build(recs)

	equalIDs(t, f.Roots, "root")
	for _, id := range []string{"a", "b", "below", "self"} {
		if f.Lookup(id) != nil {
			t.Errorf("%s should have been dropped", id)
		}
		if !hasProblem(f, ProblemCycle, id) {
			t.Errorf("expected cycle problem for %s", id)
		}
	}
}

// TestBuildDuplicateIDs verifies the first record with an id wins
func TestBuildDuplicateIDs(t *testing.T) {
	recs := []model.Node{
		{ID: "a", Title: "first"},
		{ID: "a", Title: "second"},
		{ID: "", Title: "nameless"},
	}
	f := Build(recs)

	if f.Len() != 1 || f.Lookup("a").Title() != "first" {
		t.Fatalf("expected only the first record, got %v", ids(f.Roots))
	}
	if !hasProblem(f, ProblemDuplicateID, "a") {
		t.Error("expected duplicate-id problem")
	}
	if !hasProblem(f, ProblemInvalid, "") {
		t.Error("expected invalid problem for empty id")
	}
}

func TestProblemError(t *testing.T) {
	p := Problem{Kind: ProblemDanglingParent, ID: "b", ParentID: "gone"}
	if p.Error() != "folder b: parent gone does not exist, shown as root" {
		t.Errorf("unexpected message %q", p.Error())
	}
	if ProblemCycle.String() != "cycle" {
		t.Errorf("unexpected kind label %q", ProblemCycle.String())
	}
}

func TestDescendants(t *testing.T) {
	f := Build(fruit())
	got := Descendants(f.Lookup("Fruit"))
	want := []string{"Apple", "Banana", "Citrus", "Orange", "Lemon"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(Descendants(f.Lookup("Apple"))) != 0 {
		t.Error("leaf should have no descendants")
	}
}
