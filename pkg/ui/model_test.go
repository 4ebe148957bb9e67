package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/accordion"
	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/testutil"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestModel builds a UI over the sample folders: Fruit and Vegetables
// collapsed at the top level, Citrus open inside Fruit.
func newTestModel(t *testing.T) (Model, *datasource.Memory) {
	t.Helper()
	mem := datasource.NewMemory(testutil.SampleFolders()...)
	n := 0
	list, err := accordion.New(context.Background(), mem,
		accordion.WithLogger(quietLogger()),
		accordion.WithClock(func() time.Time { return testutil.BaseTime }),
		accordion.WithIDGenerator(func() string { n++; return fmt.Sprintf("new-%d", n) }),
	)
	if err != nil {
		t.Fatalf("accordion.New: %v", err)
	}
	m := NewModel(context.Background(), list, WithLogger(quietLogger()), WithTheme(TestTheme()))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model), mem
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// send delivers msg and, once back in list mode, runs the returned command
// and feeds its result back the way the Bubble Tea runtime would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil || m.mode != modeList {
		return m
	}
	if res, ok := cmd().(opResultMsg); ok {
		updated, _ = m.Update(res)
		m = updated.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyMsg(k))
	}
	return m
}

// typeText sends each rune of s as its own key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, keyMsg(string(r)))
	}
	return m
}

func titles(m Model) []string {
	var out []string
	for _, r := range m.Rows() {
		out = append(out, r.Title)
	}
	return out
}

func assertTitles(t *testing.T, m Model, want ...string) {
	t.Helper()
	got := titles(m)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rows = %v, want %v", got, want)
	}
}

func selectedTitle(m Model) string {
	rows := m.Rows()
	if m.Cursor() < 0 || m.Cursor() >= len(rows) {
		return ""
	}
	return rows[m.Cursor()].Title
}

func TestInitialRows(t *testing.T) {
	m, _ := newTestModel(t)
	assertTitles(t, m, "Fruit", "Vegetables")
	if m.Cursor() != 0 {
		t.Errorf("expected cursor on first row, got %d", m.Cursor())
	}
	if m.Init() != nil {
		t.Error("expected no init command without a watcher")
	}
}

func TestCursorNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "j")
	if selectedTitle(m) != "Vegetables" {
		t.Fatalf("expected Vegetables selected, got %q", selectedTitle(m))
	}
	m = press(t, m, "j", "j")
	if m.Cursor() != 1 {
		t.Errorf("cursor should clamp at the last row, got %d", m.Cursor())
	}
	m = press(t, m, "k", "k")
	if m.Cursor() != 0 {
		t.Errorf("cursor should clamp at the first row, got %d", m.Cursor())
	}
	m = press(t, m, "G")
	if m.Cursor() != 1 {
		t.Errorf("G should jump to the bottom, got %d", m.Cursor())
	}
	m = press(t, m, "g")
	if m.Cursor() != 0 {
		t.Errorf("g should jump to the top, got %d", m.Cursor())
	}
}

func TestToggleExpand(t *testing.T) {
	m, mem := newTestModel(t)
	m = press(t, m, "enter")
	assertTitles(t, m, "Fruit", "Apple", "Banana", "Citrus", "Orange", "Lemon", "Vegetables")
	if selectedTitle(m) != "Fruit" {
		t.Errorf("cursor should stay on the toggled row, got %q", selectedTitle(m))
	}

	recs, _ := mem.List(context.Background())
	for _, r := range recs {
		if r.ID == "Fruit" && !r.IsExpanded {
			t.Error("expected expansion to be persisted")
		}
	}

	m = press(t, m, "space")
	assertTitles(t, m, "Fruit", "Vegetables")
}

func TestExpandCollapseAll(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "E")
	if len(m.Rows()) != 9 {
		t.Fatalf("expected all 9 folders after expand all, got %v", titles(m))
	}
	m = press(t, m, "j", "j", "j", "j") // Orange
	m = press(t, m, "C")
	assertTitles(t, m, "Fruit", "Vegetables")
	if selectedTitle(m) != "Fruit" {
		t.Errorf("cursor should land on the collapsed ancestor, got %q", selectedTitle(m))
	}
}

func TestAddRoot(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "a")
	if m.mode != modeInput {
		t.Fatalf("expected title prompt")
	}
	m = typeText(t, m, "Nuts")
	m = press(t, m, "enter")

	assertTitles(t, m, "Fruit", "Vegetables", "Nuts")
	if selectedTitle(m) != "Nuts" {
		t.Errorf("expected cursor on the new folder, got %q", selectedTitle(m))
	}
	if s, isErr := m.Status(); isErr || !strings.Contains(s, "Nuts") {
		t.Errorf("unexpected status %q (error=%v)", s, isErr)
	}
}

func TestAddRootEmptyTitleUsesDefault(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "a", "enter")
	assertTitles(t, m, "Fruit", "Vegetables", model.DefaultTitle)
}

func TestAddChildOpensParent(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "j", "A")
	m = typeText(t, m, "Pepper")
	m = press(t, m, "enter")

	assertTitles(t, m, "Fruit", "Vegetables", "Carrot", "Lettuce", "Pepper")
	if selectedTitle(m) != "Pepper" {
		t.Errorf("expected cursor on the new child, got %q", selectedTitle(m))
	}
}

func TestInputEscCancels(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "a")
	m = typeText(t, m, "Nope")
	m = press(t, m, "esc")
	if m.mode != modeList {
		t.Fatal("esc should close the prompt")
	}
	assertTitles(t, m, "Fruit", "Vegetables")
}

func TestRename(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "r")
	if m.input.Value() != "Fruit" {
		t.Fatalf("rename prompt should start with the current title, got %q", m.input.Value())
	}
	m = press(t, m, "backspace")
	m = typeText(t, m, "ts")
	m = press(t, m, "enter")
	assertTitles(t, m, "Fruits", "Vegetables")
}

func TestDeleteConfirm(t *testing.T) {
	m, mem := newTestModel(t)
	m = press(t, m, "d")
	if m.mode != modeConfirmDelete {
		t.Fatal("expected delete confirmation")
	}
	if !strings.Contains(m.View(), "Delete \"Fruit\"") {
		t.Error("confirmation should name the folder")
	}
	m = press(t, m, "y")
	assertTitles(t, m, "Vegetables")

	recs, _ := mem.List(context.Background())
	if len(recs) != 3 {
		t.Errorf("expected the whole Fruit subtree gone, %d records left", len(recs))
	}
}

func TestDeleteCancel(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "d", "n")
	assertTitles(t, m, "Fruit", "Vegetables")
	if s, _ := m.Status(); s != "Delete cancelled" {
		t.Errorf("unexpected status %q", s)
	}
}

func TestDeleteDisabledOutsideManualSort(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "s") // created
	m = press(t, m, "d")
	if m.mode != modeList {
		t.Fatal("delete should not ask for confirmation outside manual sort")
	}
	if s, isErr := m.Status(); !isErr || s != accordion.ErrDeleteDisabled.Error() {
		t.Errorf("unexpected status %q (error=%v)", s, isErr)
	}
}

func TestSearchLive(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/")
	if m.mode != modeSearch {
		t.Fatal("expected search mode")
	}
	m = typeText(t, m, "nan")
	assertTitles(t, m, "Fruit", "Banana")

	m = press(t, m, "enter")
	if m.mode != modeList {
		t.Fatal("enter should leave search mode")
	}
	assertTitles(t, m, "Fruit", "Banana")
	if !strings.Contains(m.View(), "search: nan") {
		t.Error("active search should stay visible")
	}

	m = press(t, m, "/", "esc")
	if kw := m.list.Keywords(); len(kw) != 0 {
		t.Errorf("esc should clear the search, got %v", kw)
	}
	if len(m.Rows()) < 2 {
		t.Errorf("expected the full list back, got %v", titles(m))
	}
}

func TestToggleFolderHeldOpenBySearch(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "nan")
	m = press(t, m, "enter")
	if selectedTitle(m) != "Fruit" {
		t.Fatalf("expected cursor on Fruit, got %q", selectedTitle(m))
	}

	m = press(t, m, "enter")
	assertTitles(t, m, "Fruit", "Banana")
	if s, isErr := m.Status(); !isErr || s != accordion.ErrForcedOpen.Error() {
		t.Errorf("unexpected status %q (error=%v)", s, isErr)
	}
}

func TestSearchNoMatch(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "zzz")
	if len(m.Rows()) != 0 {
		t.Fatalf("expected no rows, got %v", titles(m))
	}
	if !strings.Contains(m.View(), "No folders match") {
		t.Error("expected empty-search message")
	}
}

func TestCycleSortAndDirection(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "s", "s") // title
	if got := m.list.Settings().SortKey; got != model.SortTitle {
		t.Fatalf("expected title sort, got %v", got)
	}
	assertTitles(t, m, "Fruit", "Vegetables")

	m = press(t, m, "S")
	assertTitles(t, m, "Vegetables", "Fruit")
	if selectedTitle(m) != "Fruit" {
		t.Errorf("cursor should follow the selected folder, got %q", selectedTitle(m))
	}
	if !strings.Contains(m.View(), "Title ▼") {
		t.Error("header should show the sort key and direction")
	}
}

func TestMoveRow(t *testing.T) {
	m, mem := newTestModel(t)
	m = press(t, m, "J")
	assertTitles(t, m, "Vegetables", "Fruit")
	if selectedTitle(m) != "Fruit" {
		t.Errorf("cursor should follow the moved row, got %q", selectedTitle(m))
	}

	recs, _ := mem.List(context.Background())
	testutil.AssertContiguousOrder(t, recs, "Vegetables", "Fruit")

	m = press(t, m, "K")
	assertTitles(t, m, "Fruit", "Vegetables")
}

func TestMoveDisabledWhileSearching(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/")
	m = typeText(t, m, "an")
	m = press(t, m, "enter", "J")
	if s, isErr := m.Status(); !isErr || s != accordion.ErrReorderDisabled.Error() {
		t.Errorf("unexpected status %q (error=%v)", s, isErr)
	}
}

func TestStoreChangedReloads(t *testing.T) {
	m, mem := newTestModel(t)
	rec := model.Node{ID: "ext", Title: "External", Order: 50, CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}
	if err := mem.Create(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	m = send(t, m, StoreChangedMsg{})
	assertTitles(t, m, "Fruit", "Vegetables", "External")
}

func TestCopyTitle(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	m, _ := newTestModel(t)
	m = press(t, m, "y")
	if copied != "Fruit" {
		t.Errorf("expected Fruit on the clipboard, got %q", copied)
	}
}

func TestCopyFailureShowsError(t *testing.T) {
	orig := copyToClipboard
	copyToClipboard = func(string) error { return fmt.Errorf("no clipboard") }
	t.Cleanup(func() { copyToClipboard = orig })

	m, _ := newTestModel(t)
	m = press(t, m, "y")
	if s, isErr := m.Status(); !isErr || !strings.Contains(s, "no clipboard") {
		t.Errorf("unexpected status %q (error=%v)", s, isErr)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewScrollsWithCursor(t *testing.T) {
	mem := datasource.NewMemory(testutil.NewDefault().Wide(40)...)
	list, err := accordion.New(context.Background(), mem, accordion.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(context.Background(), list, WithTheme(TestTheme()))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})
	m = updated.(Model)

	m = press(t, m, "G")
	view := m.View()
	if !strings.Contains(view, "root 39") {
		t.Error("last row should be visible after jumping to the bottom")
	}
	if strings.Contains(view, "root 0 ") {
		t.Error("first row should have scrolled out of view")
	}
	if m.offset == 0 {
		t.Error("expected a non-zero scroll offset")
	}
}

func TestViewEmptyList(t *testing.T) {
	list, err := accordion.New(context.Background(), datasource.NewMemory(), accordion.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(context.Background(), list, WithTheme(TestTheme()))
	if !strings.Contains(m.View(), "No folders yet") {
		t.Error("expected empty state")
	}
	// Keys that need a selection are no-ops on an empty list.
	m = press(t, m, "enter", "d", "r", "J", "y")
	if m.mode != modeList {
		t.Errorf("expected list mode, got %v", m.mode)
	}
}
