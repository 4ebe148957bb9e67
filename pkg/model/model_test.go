package model

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNodeValidate(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr string
	}{
		{name: "valid root", node: Node{ID: "a", Title: "A"}},
		{name: "valid child", node: Node{ID: "b", ParentID: "a"}},
		{name: "missing id", node: Node{Title: "A"}, wantErr: "id is required"},
		{name: "self parent", node: Node{ID: "a", ParentID: "a"}, wantErr: "own parent"},
		{name: "negative order", node: Node{ID: "a", Order: -1}, wantErr: "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"manual":      SortManual,
		"":            SortManual,
		"Created":     SortCreated,
		"title":       SortTitle,
		"currentDate": SortModified,
		"modified":    SortModified,
	}
	for in, want := range cases {
		got, err := ParseSortKey(in)
		if err != nil {
			t.Errorf("ParseSortKey(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseSortKey("priority"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSortKeyNextWraps(t *testing.T) {
	if SortModified.Next() != SortManual {
		t.Errorf("expected wrap to manual, got %v", SortModified.Next())
	}
	if SortManual.Next() != SortCreated {
		t.Errorf("expected created after manual, got %v", SortManual.Next())
	}
}

func TestSortKeyYAMLRoundTrip(t *testing.T) {
	type wrapper struct {
		Key SortKey `yaml:"key"`
	}
	out, err := yaml.Marshal(wrapper{Key: SortTitle})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "key: title") {
		t.Fatalf("expected key name in yaml, got %q", out)
	}
	var back wrapper
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Key != SortTitle {
		t.Errorf("expected title, got %v", back.Key)
	}
}

func TestSortDirection(t *testing.T) {
	if DirectionOf(true) != SortAscending || DirectionOf(false) != SortDescending {
		t.Error("DirectionOf mapping is wrong")
	}
	if SortAscending.Toggle() != SortDescending || SortDescending.Toggle() != SortAscending {
		t.Error("Toggle should flip direction")
	}
	if SortAscending.Indicator() != "▲" {
		t.Errorf("unexpected indicator %q", SortAscending.Indicator())
	}
}
