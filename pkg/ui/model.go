// Package ui is the terminal front end for the folder list. It only binds
// keys to list commands and renders the rows the list hands out; every
// tree rule lives in the accordion package.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/accordion/pkg/accordion"
	"github.com/vanderheijden86/accordion/pkg/debug"
	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/watcher"
)

// mode is what currently receives key presses.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeInput
	modeConfirmDelete
)

// inputKind is what the title prompt is collecting for.
type inputKind int

const (
	inputAddRoot inputKind = iota
	inputAddChild
	inputRename
)

// StoreChangedMsg reports that another process changed the store.
type StoreChangedMsg struct{}

// opResultMsg carries the outcome of a list command run off the UI goroutine.
type opResultMsg struct {
	status string
	reveal string // row to put the cursor on afterwards
	err    error
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// WatchStoreCmd waits for the next store change and reports it.
func WatchStoreCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return StoreChangedMsg{}
	}
}

// Option configures the UI model.
type Option func(*Model)

// WithWatcher makes the list reload whenever the watcher fires.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithLogger sets the logger used for failed commands.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithHelp shows or hides the key help under the list.
func WithHelp(show bool) Option {
	return func(m *Model) { m.showHelp = show }
}

// WithTheme replaces the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// Model is the Bubble Tea model for the folder list.
type Model struct {
	ctx     context.Context
	list    *accordion.Model
	watcher *watcher.Watcher
	log     logrus.FieldLogger

	keys     KeyMap
	help     help.Model
	showHelp bool
	theme    Theme

	search textinput.Model
	input  textinput.Model
	mode   mode
	kind   inputKind
	target string // folder the prompt or confirmation is about

	rows   []model.Row
	cursor int
	offset int

	width  int
	height int

	status    string
	statusErr bool
}

// NewModel creates the UI over an already loaded list.
func NewModel(ctx context.Context, list *accordion.Model, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search folders"
	search.CharLimit = 200

	input := textinput.New()
	input.CharLimit = 200

	m := Model{
		ctx:      ctx,
		list:     list,
		log:      debug.Logger(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		showHelp: true,
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		search:   search,
		input:    input,
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.rows = list.CurrentRows()
	if kw := list.Keywords(); len(kw) > 0 {
		m.search.SetValue(strings.Join(kw, " "))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchStoreCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case StoreChangedMsg:
		reload := m.run(func(ctx context.Context) (string, string, error) {
			return "", m.selectedID(), m.list.OnExternalChange(ctx)
		})
		if m.watcher != nil {
			return m, tea.Batch(reload, WatchStoreCmd(m.watcher))
		}
		return m, reload

	case opResultMsg:
		m.refresh(msg.reveal)
		if msg.err != nil {
			m.setError(msg.err)
		} else if msg.status != "" {
			m.setStatus(msg.status)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeInput:
			return m.handleInputKeys(msg)
		case modeConfirmDelete:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.statusErr = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.ensureCursorVisible()
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.rows) - 1
		m.ensureCursorVisible()

	case key.Matches(msg, m.keys.Toggle):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) (string, string, error) {
			return "", id, m.list.ToggleExpand(ctx, id)
		})

	case key.Matches(msg, m.keys.ExpandAll):
		id := m.selectedID()
		return m, m.run(func(ctx context.Context) (string, string, error) {
			return "Expanded all folders", id, m.list.ExpandAll(ctx)
		})
	case key.Matches(msg, m.keys.CollapseAll):
		id := m.selectedID()
		return m, m.run(func(ctx context.Context) (string, string, error) {
			return "Collapsed all folders", rootOf(m.list, id), m.list.CollapseAll(ctx)
		})

	case key.Matches(msg, m.keys.AddRoot):
		m.openInput(inputAddRoot, "", "")
	case key.Matches(msg, m.keys.AddChild):
		id := m.selectedID()
		if id == "" {
			m.setError(errors.New("select a folder first"))
			return m, nil
		}
		m.openInput(inputAddChild, id, "")
	case key.Matches(msg, m.keys.Rename):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		m.openInput(inputRename, id, m.rows[m.cursor].Title)

	case key.Matches(msg, m.keys.Delete):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		if !m.list.CanDelete() {
			m.setError(accordion.ErrDeleteDisabled)
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.target = id

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.CycleSort):
		s := m.list.Settings()
		next := s.SortKey.Next()
		if err := m.list.SetSort(m.ctx, next, s.Ascending); err != nil {
			m.refresh(m.selectedID())
			m.setError(err)
			return m, nil
		}
		m.refresh(m.selectedID())
		m.setStatus("Sorted by " + sortLabel(next, s.Direction()))
	case key.Matches(msg, m.keys.Direction):
		if err := m.list.ToggleDirection(m.ctx); err != nil {
			m.refresh(m.selectedID())
			m.setError(err)
			return m, nil
		}
		s := m.list.Settings()
		m.refresh(m.selectedID())
		m.setStatus("Sorted by " + sortLabel(s.SortKey, s.Direction()))

	case key.Matches(msg, m.keys.MoveUp):
		cmd := m.moveRow(-1)
		return m, cmd
	case key.Matches(msg, m.keys.MoveDown):
		cmd := m.moveRow(1)
		return m, cmd

	case key.Matches(msg, m.keys.Copy):
		if len(m.rows) == 0 {
			return m, nil
		}
		title := m.rows[m.cursor].Title
		if err := copyToClipboard(title); err != nil {
			m.setError(fmt.Errorf("copy to clipboard: %w", err))
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Copied %q", title))

	case key.Matches(msg, m.keys.Reload):
		id := m.selectedID()
		return m, m.run(func(ctx context.Context) (string, string, error) {
			return "Reloaded", id, m.list.Reload(ctx)
		})

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.ensureCursorVisible()
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		if len(m.list.Keywords()) > 0 {
			m.setStatus(fmt.Sprintf("%d folders shown", len(m.rows)))
		}
		return m, nil
	case tea.KeyEsc:
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.applySearch()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.applySearch()
	}
	return m, cmd
}

// applySearch filters the list live as the query is typed.
func (m *Model) applySearch() {
	id := m.selectedID()
	if err := m.list.SetSearch(m.ctx, strings.Fields(m.search.Value())...); err != nil {
		m.setError(err)
	}
	m.refresh(id)
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		title := m.input.Value()
		kind, target := m.kind, m.target
		m.closeInput()
		return m, m.submit(kind, target, title)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.target
	m.mode = modeList
	m.target = ""
	switch msg.String() {
	case "y", "Y", "enter":
		title := m.titleOf(target)
		return m, m.run(func(ctx context.Context) (string, string, error) {
			if err := m.list.Delete(ctx, target); err != nil {
				return "", "", err
			}
			return fmt.Sprintf("Deleted %q", title), "", nil
		})
	}
	m.setStatus("Delete cancelled")
	return m, nil
}

// submit runs the command a title prompt was opened for.
func (m Model) submit(kind inputKind, target, title string) tea.Cmd {
	switch kind {
	case inputAddChild:
		return m.run(func(ctx context.Context) (string, string, error) {
			rec, err := m.list.AddChild(ctx, target, title)
			if err != nil {
				return "", target, err
			}
			return fmt.Sprintf("Added %q", rec.Title), rec.ID, nil
		})
	case inputRename:
		return m.run(func(ctx context.Context) (string, string, error) {
			return "Renamed", target, m.list.Rename(ctx, target, title)
		})
	default:
		return m.run(func(ctx context.Context) (string, string, error) {
			rec, err := m.list.AddRoot(ctx, title)
			if err != nil {
				return "", "", err
			}
			return fmt.Sprintf("Added %q", rec.Title), rec.ID, nil
		})
	}
}

// moveRow drags the selected row one position up or down.
func (m *Model) moveRow(delta int) tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	if !m.list.CanReorder() {
		m.setError(accordion.ErrReorderDisabled)
		return nil
	}
	from := m.cursor
	to := from + delta
	if to < 0 || to >= len(m.rows) {
		return nil
	}
	id := m.rows[from].ID
	return m.run(func(ctx context.Context) (string, string, error) {
		return "", id, m.list.Move(ctx, from, to)
	})
}

// run wraps a list command as a tea.Cmd.
func (m Model) run(fn func(ctx context.Context) (status, reveal string, err error)) tea.Cmd {
	ctx := m.ctx
	log := m.log
	return func() tea.Msg {
		status, reveal, err := fn(ctx)
		if err != nil {
			log.WithError(err).Debug("list command failed")
		}
		return opResultMsg{status: status, reveal: reveal, err: err}
	}
}

func (m *Model) openInput(kind inputKind, target, value string) {
	m.mode = modeInput
	m.kind = kind
	m.target = target
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = model.DefaultTitle
	switch kind {
	case inputAddChild:
		m.input.Prompt = fmt.Sprintf("New folder in %s: ", truncate(m.titleOf(target), 30))
	case inputRename:
		m.input.Prompt = "Rename: "
	default:
		m.input.Prompt = "New folder: "
	}
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeList
	m.target = ""
	m.input.Blur()
	m.input.Reset()
}

// refresh pulls the rows again and keeps the cursor on reveal when it is
// still visible.
func (m *Model) refresh(reveal string) {
	m.rows = m.list.CurrentRows()
	if reveal != "" {
		for i, r := range m.rows {
			if r.ID == reveal {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible scrolls so the cursor row is inside the window.
func (m *Model) ensureCursorVisible() {
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if maxOffset := len(m.rows) - h; m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].ID
}

func (m Model) titleOf(id string) string {
	if rec, ok := m.list.Folder(id); ok {
		return rec.Title
	}
	return id
}

// rootOf returns the top-level ancestor of id, which stays visible when
// everything collapses.
func rootOf(list *accordion.Model, id string) string {
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		rec, ok := list.Folder(id)
		if !ok || rec.ParentID == "" {
			return id
		}
		id = rec.ParentID
	}
	return id
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// Cursor returns the selected row index.
func (m Model) Cursor() int {
	return m.cursor
}

// Rows returns the rows currently on screen.
func (m Model) Rows() []model.Row {
	return m.rows
}

// Status returns the status line and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}
