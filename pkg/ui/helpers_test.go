package ui

import (
	"testing"

	"github.com/vanderheijden86/accordion/pkg/model"
)

func TestTruncateRunesHelper(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"日本語のフォルダ", 6, "日本…"},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.max); got != tc.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.expected)
		}
	}
}

func TestPadRightUsesCellWidth(t *testing.T) {
	if got := padRight("日本", 6); got != "日本  " {
		t.Errorf("padRight wide = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not cut, got %q", got)
	}
}

func TestExpandIndicator(t *testing.T) {
	tests := []struct {
		row  model.Row
		want string
	}{
		{model.Row{HasChildren: false}, "•"},
		{model.Row{HasChildren: true, IsExpanded: true}, "▾"},
		{model.Row{HasChildren: true, IsExpanded: false}, "▸"},
	}
	for _, tc := range tests {
		if got := expandIndicator(tc.row); got != tc.want {
			t.Errorf("expandIndicator(%+v) = %q, want %q", tc.row, got, tc.want)
		}
	}
}

func TestIndent(t *testing.T) {
	if indent(0) != "" || indent(-1) != "" {
		t.Error("top level rows are not indented")
	}
	if indent(2) != "    " {
		t.Errorf("indent(2) = %q", indent(2))
	}
}

func TestKeyMapHelpCoversEveryBinding(t *testing.T) {
	k := DefaultKeyMap()
	n := 0
	for _, col := range k.FullHelp() {
		for _, b := range col {
			if b.Help().Key == "" {
				t.Errorf("binding %v has no help text", b.Keys())
			}
			n++
		}
	}
	if n != 20 {
		t.Errorf("expected 20 bindings in full help, got %d", n)
	}
}
