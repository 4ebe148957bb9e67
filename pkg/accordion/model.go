// Package accordion implements the expandable folder list: an in-memory
// forest mirroring a Store, projected into filtered, sorted, flattened rows
// and mutated together with the store on user commands.
//
// Every command runs under one writer lock for its whole write-then-reload
// sequence, so a change notification from the store can never interleave
// with an in-flight write.
package accordion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/accordion/pkg/debug"
	"github.com/vanderheijden86/accordion/pkg/metrics"
	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/tree"
)

// Model is the folder list component. It is safe for concurrent use.
type Model struct {
	mu sync.Mutex

	store        Store
	log          logrus.FieldLogger
	now          func() time.Time
	newID        func() string
	defaultTitle string
	sampleData   bool
	seeded       bool

	settings     Settings
	saveSettings func(Settings) error

	keywords []string
	matcher  *tree.Matcher

	forest *tree.Forest
	flat   []*tree.Node

	notifyMu  sync.Mutex
	reloading bool // an OnExternalChange reload is running
	dirty     bool // a notification came in while reloading
}

// New creates the model and performs the first load. A failed load is
// logged and returned, but the model is still usable: it shows an empty
// list and recovers on the next Reload.
func New(ctx context.Context, store Store, opts ...Option) (*Model, error) {
	if store == nil {
		return nil, errors.New("accordion: nil store")
	}
	m := &Model{store: store}
	defaults(m)
	for _, opt := range opts {
		opt(m)
	}
	m.matcher = tree.NewMatcher()
	m.forest = tree.Build(nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m, m.reloadLocked(ctx)
}

// Reload rebuilds the forest from the store and re-runs the projection.
func (m *Model) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloadLocked(ctx)
}

// OnExternalChange handles a change notification from the store. It is a
// Reload. A notification arriving while one is running returns at once and
// marks the model dirty; the running call then reloads again, so the store
// is always read after the last notification.
func (m *Model) OnExternalChange(ctx context.Context) error {
	m.notifyMu.Lock()
	if m.reloading {
		m.dirty = true
		m.notifyMu.Unlock()
		debug.Log("external change queued behind running reload")
		return nil
	}
	m.reloading = true
	m.notifyMu.Unlock()

	for {
		err := m.Reload(ctx)

		m.notifyMu.Lock()
		again := m.dirty && ctx.Err() == nil
		m.dirty = false
		if !again {
			m.reloading = false
		}
		m.notifyMu.Unlock()
		if !again {
			return err
		}
		debug.Log("external change arrived during reload, reloading again")
	}
}

func (m *Model) reloadLocked(ctx context.Context) error {
	defer debug.Trace("accordion.reload")()

	done := metrics.Timer(metrics.StoreRead)
	recs, err := m.store.List(ctx)
	done()
	if err != nil {
		m.forest = tree.Build(nil)
		m.flat = nil
		m.log.WithError(err).WithField("op", "reload").Error("failed to read folders")
		return readErr("reload", err)
	}

	if len(recs) == 0 && m.sampleData && !m.seeded {
		m.seeded = true
		sample := m.sampleRecords()
		if err := m.store.SaveAll(ctx, sample); err != nil {
			m.log.WithError(err).WithField("op", "seed").Warn("failed to create sample folders")
		} else {
			recs = sample
		}
	}

	done = metrics.Timer(metrics.TreeBuild)
	m.forest = tree.Build(recs)
	done()
	for _, p := range m.forest.Problems {
		m.log.WithFields(logrus.Fields{"id": p.ID, "kind": p.Kind.String()}).Warn(p.Error())
	}
	m.refreshLocked()
	debug.Log("loaded %d folders, %d visible", m.forest.Len(), len(m.flat))
	return nil
}

// refreshLocked re-runs filter, sort and flatten over the loaded forest.
func (m *Model) refreshLocked() {
	defer metrics.Timer(metrics.Project)()
	roots := m.forest.Roots
	if !m.matcher.Empty() {
		roots = tree.Filter(roots, m.matcher)
	}
	tree.Sort(roots, m.settings.SortKey, m.settings.Direction())
	m.flat = tree.Flatten(roots)
}

// resyncLocked reloads after a failed write so the list matches the store.
func (m *Model) resyncLocked(ctx context.Context) {
	if err := m.reloadLocked(ctx); err != nil {
		m.log.WithError(err).Warn("resync after failed write also failed")
	}
}

// writeLocked runs a store write, then reloads. A failed write is logged,
// resynchronized and returned as ErrStoreWrite.
func (m *Model) writeLocked(ctx context.Context, op, id string, write func() error) error {
	done := metrics.Timer(metrics.StoreWrite)
	err := write()
	done()
	if err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{"op": op, "id": id}).Error("store write failed")
		m.resyncLocked(ctx)
		return writeErr(op, err)
	}
	return m.reloadLocked(ctx)
}

// CurrentRows returns the rows to render, top to bottom.
func (m *Model) CurrentRows() []model.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tree.Rows(m.flat)
}

// Len returns the number of visible rows.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flat)
}

// IndexOf returns the visible position of id, or -1.
func (m *Model) IndexOf(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tree.IndexOf(m.flat, id)
}

// Folder returns a copy of the loaded record for id.
func (m *Model) Folder(id string) (model.Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.forest.Lookup(id)
	if n == nil {
		return model.Node{}, false
	}
	return *n.Folder, true
}

// Problems returns the integrity problems found by the last load.
func (m *Model) Problems() []tree.Problem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tree.Problem(nil), m.forest.Problems...)
}

// Settings returns the active sort settings.
func (m *Model) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Keywords returns the active search keywords.
func (m *Model) Keywords() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keywords...)
}

// CanReorder reports whether Move is allowed: manual sort, no search.
func (m *Model) CanReorder() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canReorderLocked()
}

func (m *Model) canReorderLocked() bool {
	return m.settings.SortKey == model.SortManual && m.matcher.Empty()
}

// CanDelete reports whether Delete is allowed: manual sort only.
func (m *Model) CanDelete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.SortKey == model.SortManual
}

// ToggleExpand flips a folder open or closed and persists the new state.
// Folders without children are left alone. A folder the active search holds
// open is not written and ErrForcedOpen is returned.
func (m *Model) ToggleExpand(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.forest.Lookup(id)
	if n == nil {
		return notFound(id)
	}
	if !n.HasChildren() {
		return nil
	}
	if m.forcedOpenLocked(n) {
		return ErrForcedOpen
	}
	rec := *n.Folder
	rec.IsExpanded = !n.Expanded
	return m.writeLocked(ctx, "toggle", id, func() error {
		return m.store.Update(ctx, rec)
	})
}

// forcedOpenLocked reports whether the active search holds n open because
// a folder below it matches.
func (m *Model) forcedOpenLocked(n *tree.Node) bool {
	if m.matcher.Empty() {
		return false
	}
	found := false
	tree.Walk(n.Children, func(d *tree.Node) bool {
		found = found || m.matcher.Match(d.Folder.Title)
		return !found
	})
	return found
}

// ExpandAll opens every folder that has children.
func (m *Model) ExpandAll(ctx context.Context) error {
	return m.setAllExpanded(ctx, true)
}

// CollapseAll closes every folder.
func (m *Model) CollapseAll(ctx context.Context) error {
	return m.setAllExpanded(ctx, false)
}

func (m *Model) setAllExpanded(ctx context.Context, expanded bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed []model.Node
	tree.Walk(m.forest.Roots, func(n *tree.Node) bool {
		if n.HasChildren() && n.Folder.IsExpanded != expanded {
			rec := *n.Folder
			rec.IsExpanded = expanded
			changed = append(changed, rec)
		}
		return true
	})
	if len(changed) == 0 {
		// Forced search expansion lives only in memory; a reload drops it.
		return m.reloadLocked(ctx)
	}
	return m.writeLocked(ctx, "expand-all", "", func() error {
		return m.store.SaveAll(ctx, changed)
	})
}

// SetSearch replaces the search keywords. Several keywords must all match;
// blank keywords are ignored and no keywords clears the search.
//
// Folders holding matches are forced open in memory. The forced state
// stays visible after the search is cleared, until the next reload.
func (m *Model) SetSearch(ctx context.Context, keywords ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.matcher = tree.NewMatcher(keywords...)
	m.keywords = m.keywords[:0]
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			m.keywords = append(m.keywords, k)
		}
	}
	m.refreshLocked()
	debug.Log("search %q: %d rows", m.keywords, len(m.flat))
	return ctx.Err()
}

// SetSort changes the sort key and direction and hands the new settings to
// the save hook. The list is re-sorted even when saving fails.
func (m *Model) SetSort(ctx context.Context, key model.SortKey, ascending bool) error {
	if key < 0 || key >= model.NumSortKeys {
		return fmt.Errorf("invalid sort key %d", int(key))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = Settings{SortKey: key, Ascending: ascending}
	m.refreshLocked()
	if m.saveSettings != nil {
		if err := m.saveSettings(m.settings); err != nil {
			m.log.WithError(err).WithField("op", "sort").Warn("failed to save sort settings")
			return fmt.Errorf("save sort settings: %w", err)
		}
	}
	return ctx.Err()
}

// ToggleDirection flips between ascending and descending.
func (m *Model) ToggleDirection(ctx context.Context) error {
	s := m.Settings()
	return m.SetSort(ctx, s.SortKey, !s.Ascending)
}

// Move drags the visible row at from to position to. Afterwards every
// visible row carries its position as manual order; the changed orders are
// saved in one all-or-nothing write.
func (m *Model) Move(ctx context.Context, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.canReorderLocked() {
		return ErrReorderDisabled
	}
	_, changed, err := tree.Move(m.flat, from, to, m.settings.Direction())
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}
	return m.writeLocked(ctx, "move", changed[0].ID, func() error {
		return m.store.SaveAll(ctx, changed)
	})
}

// AddRoot creates a top-level folder. An empty title gets the default.
func (m *Model) AddRoot(ctx context.Context, title string) (model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.newRecordLocked(title, "")
	err := m.writeLocked(ctx, "add", rec.ID, func() error {
		return m.store.Create(ctx, rec)
	})
	return rec, err
}

// AddChild creates a folder under parentID and opens the parent so the new
// child is visible. Both records go to the store in one write.
func (m *Model) AddChild(ctx context.Context, parentID, title string) (model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.forest.Lookup(parentID)
	if parent == nil {
		return model.Node{}, notFound(parentID)
	}
	rec := m.newRecordLocked(title, parentID)
	recs := []model.Node{rec}
	if !parent.Folder.IsExpanded {
		p := *parent.Folder
		p.IsExpanded = true
		recs = append(recs, p)
	}
	err := m.writeLocked(ctx, "add-child", rec.ID, func() error {
		return m.store.SaveAll(ctx, recs)
	})
	return rec, err
}

// newRecordLocked returns a collapsed folder ordered after every existing one.
func (m *Model) newRecordLocked(title, parentID string) model.Node {
	title = strings.TrimSpace(title)
	if title == "" {
		title = m.defaultTitle
	}
	order := 0
	for _, n := range m.forest.Index {
		if n.Folder.Order >= order {
			order = n.Folder.Order + 1
		}
	}
	now := m.now()
	return model.Node{
		ID:         m.newID(),
		Title:      title,
		Order:      order,
		CreatedAt:  now,
		ModifiedAt: now,
		ParentID:   parentID,
	}
}

// Rename changes a folder's title and bumps its modification time.
func (m *Model) Rename(ctx context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.forest.Lookup(id)
	if n == nil {
		return notFound(id)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = m.defaultTitle
	}
	rec := *n.Folder
	rec.Title = title
	rec.ModifiedAt = m.now()
	return m.writeLocked(ctx, "rename", id, func() error {
		return m.store.Update(ctx, rec)
	})
}

// Delete removes a folder and everything below it.
func (m *Model) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings.SortKey != model.SortManual {
		return ErrDeleteDisabled
	}
	n := m.forest.Lookup(id)
	if n == nil {
		return notFound(id)
	}
	m.log.WithFields(logrus.Fields{"op": "delete", "id": id, "descendants": len(tree.Descendants(n))}).Debug("deleting folder")
	return m.writeLocked(ctx, "delete", id, func() error {
		return m.store.Delete(ctx, id)
	})
}
