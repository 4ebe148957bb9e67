package datasource

import (
	"context"
	"fmt"
	"sync"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// Memory keeps folders in a map. List returns them in insertion order.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]model.Node
	order []string
}

// NewMemory returns an empty store, optionally seeded with records.
func NewMemory(seed ...model.Node) *Memory {
	m := &Memory{byID: make(map[string]model.Node)}
	for _, n := range seed {
		m.putLocked(n)
	}
	return m
}

func (m *Memory) putLocked(n model.Node) {
	if _, ok := m.byID[n.ID]; !ok {
		m.order = append(m.order, n.ID)
	}
	m.byID[n.ID] = n
}

// List returns every record.
func (m *Memory) List(ctx context.Context) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

// FetchRoots returns the matching top-level records.
func (m *Memory) FetchRoots(ctx context.Context, titleFilter string) ([]model.Node, error) {
	recs, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterRoots(recs, titleFilter), nil
}

// Create inserts n; the id must be new.
func (m *Memory) Create(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[n.ID]; ok {
		return fmt.Errorf("folder %s already exists", n.ID)
	}
	m.putLocked(n)
	return ctx.Err()
}

// Update replaces an existing record.
func (m *Memory) Update(ctx context.Context, n model.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[n.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, n.ID)
	}
	m.byID[n.ID] = n
	return ctx.Err()
}

// SaveAll upserts every record, or none when one is invalid.
func (m *Memory) SaveAll(ctx context.Context, nodes []model.Node) error {
	if err := validateAll(nodes); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range nodes {
		m.putLocked(n)
	}
	return nil
}

// Delete removes id and its subtree.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	recs := make([]model.Node, 0, len(m.order))
	for _, oid := range m.order {
		recs = append(recs, m.byID[oid])
	}
	gone := make(map[string]bool)
	for _, d := range subtree(recs, id) {
		gone[d] = true
		delete(m.byID, d)
	}
	kept := m.order[:0]
	for _, oid := range m.order {
		if !gone[oid] {
			kept = append(kept, oid)
		}
	}
	m.order = kept
	return ctx.Err()
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
