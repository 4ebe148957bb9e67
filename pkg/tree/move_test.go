package tree

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/testutil"
)

func apply(recs []model.Node, changed []model.Node) []model.Node {
	byID := make(map[string]model.Node, len(changed))
	for _, c := range changed {
		byID[c.ID] = c
	}
	out := make([]model.Node, len(recs))
	for i, r := range recs {
		if c, ok := byID[r.ID]; ok {
			r = c
		}
		out[i] = r
	}
	return out
}

// TestMoveLastToFirst drags C above A and B.
func TestMoveLastToFirst(t *testing.T) {
	recs := []model.Node{
		{ID: "A", Title: "A", Order: 0},
		{ID: "B", Title: "B", Order: 1},
		{ID: "C", Title: "C", Order: 2},
	}
	f := Build(recs)
	moved, changed, err := Move(Flatten(f.Roots), 2, 0, model.SortAscending)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	equalIDs(t, moved, "C", "A", "B")
	if len(changed) != 3 {
		t.Fatalf("expected 3 changed records, got %d", len(changed))
	}
	testutil.AssertContiguousOrder(t, apply(recs, changed), "C", "A", "B")

	// Reload and re-flatten in manual order.
	f = Build(apply(recs, changed))
	Sort(f.Roots, model.SortManual, model.SortAscending)
	equalIDs(t, Flatten(f.Roots), "C", "A", "B")
}

func TestMoveDoesNotTouchInput(t *testing.T) {
	f := Build(testutil.NewDefault().Wide(3))
	list := Flatten(f.Roots)
	before := ids(list)
	if _, _, err := Move(list, 0, 2, model.SortAscending); err != nil {
		t.Fatalf("Move: %v", err)
	}
	for i, id := range ids(list) {
		if id != before[i] {
			t.Fatalf("input list changed: %v -> %v", before, ids(list))
		}
	}
	if list[0].Folder.Order != 0 {
		t.Error("Move must not mutate the records")
	}
}

func TestMoveSamePositionIsNoop(t *testing.T) {
	f := Build(testutil.NewDefault().Wide(3))
	moved, changed, err := Move(Flatten(f.Roots), 1, 1, model.SortAscending)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	equalIDs(t, moved, ids(Flatten(f.Roots))...)
	if len(changed) != 0 {
		t.Errorf("expected no changes, got %v", changed)
	}
}

func TestMoveOutOfRange(t *testing.T) {
	f := Build(testutil.NewDefault().Wide(2))
	list := Flatten(f.Roots)
	for _, c := range [][2]int{{-1, 0}, {2, 0}, {0, 2}, {0, -1}} {
		if _, _, err := Move(list, c[0], c[1], model.SortAscending); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Move(%d, %d): expected ErrIndexOutOfRange, got %v", c[0], c[1], err)
		}
	}
}

// TestMoveRenumbersWholeVisibleList checks the global numbering across
// hierarchy levels.
func TestMoveRenumbersWholeVisibleList(t *testing.T) {
	recs := testutil.Expand(fruit(), "Fruit")
	f := Build(recs)
	moved, changed, err := Move(Flatten(f.Roots), 5, 1, model.SortAscending)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	equalIDs(t, moved, "Fruit", "Lemon", "Apple", "Banana", "Citrus", "Orange")
	testutil.AssertContiguousOrder(t, apply(recs, changed), ids(moved)...)
}

// TestMoveDescendingNumbersFromBottom drags the bottom row of a descending
// list to the top and checks that a reload keeps it there.
func TestMoveDescendingNumbersFromBottom(t *testing.T) {
	recs := testutil.NewDefault().Wide(3)
	f := Build(recs)
	Sort(f.Roots, model.SortManual, model.SortDescending)
	list := Flatten(f.Roots)
	dragged := list[2].ID()

	moved, changed, err := Move(list, 2, 0, model.SortDescending)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved[0].ID() != dragged {
		t.Fatalf("expected %s first, got %v", dragged, ids(moved))
	}
	for _, c := range changed {
		if c.ID == dragged && c.Order != 2 {
			t.Errorf("top row of a descending list should get the highest order, got %d", c.Order)
		}
	}

	reloaded := Build(apply(recs, changed))
	Sort(reloaded.Roots, model.SortManual, model.SortDescending)
	equalIDs(t, Flatten(reloaded.Roots), ids(moved)...)
}

// TestMoveRoundTripProperty: on a list of roots, moving i to j and reloading
// in manual order with the same direction puts the item at j, with orders
// forming the sequence 0..n-1.
func TestMoveRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		recs := testutil.New(testutil.GeneratorConfig{Seed: 1}).Wide(n)
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		to := rapid.IntRange(0, n-1).Draw(t, "to")
		dir := model.DirectionOf(rapid.Bool().Draw(t, "ascending"))

		f := Build(recs)
		Sort(f.Roots, model.SortManual, dir)
		list := Flatten(f.Roots)
		item := list[from].ID()
		moved, changed, err := Move(list, from, to, dir)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}

		reloaded := Build(apply(recs, changed))
		Sort(reloaded.Roots, model.SortManual, dir)
		flat := Flatten(reloaded.Roots)
		if flat[to].ID() != item {
			t.Fatalf("expected %s at %d, got %v", item, to, ids(flat))
		}
		for i, node := range flat {
			want := i
			if dir == model.SortDescending {
				want = n - 1 - i
			}
			if node.Folder.Order != want {
				t.Fatalf("order not contiguous at %d: %d", i, node.Folder.Order)
			}
			if node.ID() != moved[i].ID() {
				t.Fatalf("reload differs from move result: %v vs %v", ids(flat), ids(moved))
			}
		}
	})
}
