package testutil

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// AssertNoDuplicateIDs verifies all folder IDs are unique.
func AssertNoDuplicateIDs(t testing.TB, recs []model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	for _, r := range recs {
		if seen[r.ID] {
			t.Errorf("duplicate folder ID: %s", r.ID)
		}
		seen[r.ID] = true
	}
}

// AssertNoCycles verifies that following parents from any record ends at a root.
func AssertNoCycles(t testing.TB, recs []model.Node) {
	t.Helper()
	parent := make(map[string]string, len(recs))
	for _, r := range recs {
		parent[r.ID] = r.ParentID
	}
	for _, r := range recs {
		steps := 0
		for id := r.ParentID; id != ""; id = parent[id] {
			steps++
			if steps > len(recs) {
				t.Errorf("cycle detected above folder %s", r.ID)
				return
			}
		}
	}
}

// AssertContiguousOrder verifies that the given ids carry orders 0..n-1 in
// that sequence.
func AssertContiguousOrder(t testing.TB, recs []model.Node, ids ...string) {
	t.Helper()
	byID := make(map[string]model.Node, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	for i, id := range ids {
		r, ok := byID[id]
		if !ok {
			t.Errorf("folder %s not found", id)
			continue
		}
		if r.Order != i {
			t.Errorf("folder %s: expected order %d, got %d", id, i, r.Order)
		}
	}
}

// AssertRowTitles compares the titles of rendered rows.
func AssertRowTitles(t testing.TB, rows []model.Row, want ...string) {
	t.Helper()
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Title
	}
	if len(want) == 0 {
		want = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("row titles mismatch:\nexpected: %v\nactual:   %v", want, got)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t testing.TB, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}
