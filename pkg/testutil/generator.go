// Package testutil provides deterministic folder fixtures for tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// BaseTime is the fixed timestamp fixtures count from.
var BaseTime = time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

// GeneratorConfig controls forest generation.
type GeneratorConfig struct {
	Seed        int64     // Random seed for determinism (0 = use current time)
	IDPrefix    string    // Prefix for folder IDs (default: "F")
	BaseTime    time.Time // Base time for timestamps (default: BaseTime)
	MaxDepth    int       // Deepest level generated (default: 3)
	MaxChildren int       // Upper bound on children per folder (default: 4)
	ExpandRatio float64   // Probability a folder starts expanded (default: 0.5)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42, // Deterministic
		IDPrefix:    "F",
		BaseTime:    BaseTime,
		MaxDepth:    3,
		MaxChildren: 4,
		ExpandRatio: 0.5,
	}
}

// Generator creates folder fixtures.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = BaseTime
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "F"
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = 4
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Folder returns one record with a fresh id, parented to parentID.
func (g *Generator) Folder(title, parentID string) model.Node {
	id := fmt.Sprintf("%s-%d", g.cfg.IDPrefix, g.next)
	created := g.cfg.BaseTime.Add(time.Duration(g.next) * time.Minute)
	n := model.Node{
		ID:         id,
		Title:      title,
		Order:      g.next,
		CreatedAt:  created,
		ModifiedAt: created,
		ParentID:   parentID,
	}
	g.next++
	return n
}

// Forest generates roots random trees.
func (g *Generator) Forest(roots int) []model.Node {
	var out []model.Node
	for i := 0; i < roots; i++ {
		out = g.subtree(out, "", 0)
	}
	return out
}

func (g *Generator) subtree(out []model.Node, parentID string, depth int) []model.Node {
	n := g.Folder(fmt.Sprintf("folder %d", g.next), parentID)
	n.IsExpanded = g.rng.Float64() < g.cfg.ExpandRatio
	out = append(out, n)
	if depth >= g.cfg.MaxDepth {
		return out
	}
	for c := g.rng.Intn(g.cfg.MaxChildren + 1); c > 0; c-- {
		out = g.subtree(out, n.ID, depth+1)
	}
	return out
}

// Chain generates a single line of nested folders, all expanded.
func (g *Generator) Chain(depth int) []model.Node {
	var out []model.Node
	parent := ""
	for i := 0; i < depth; i++ {
		n := g.Folder(fmt.Sprintf("level %d", i), parent)
		n.IsExpanded = true
		out = append(out, n)
		parent = n.ID
	}
	return out
}

// Wide generates size collapsed roots.
func (g *Generator) Wide(size int) []model.Node {
	out := make([]model.Node, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, g.Folder(fmt.Sprintf("root %d", i), ""))
	}
	return out
}

// SampleFolders returns the Fruit/Vegetables fixture, all collapsed except
// Citrus, with stable ids equal to the titles.
func SampleFolders() []model.Node {
	mk := func(order int, title, parent string, expanded bool) model.Node {
		at := BaseTime.Add(time.Duration(order) * time.Minute)
		return model.Node{
			ID: title, Title: title, ParentID: parent, Order: order,
			IsExpanded: expanded, CreatedAt: at, ModifiedAt: at,
		}
	}
	return []model.Node{
		mk(0, "Fruit", "", false),
		mk(1, "Apple", "Fruit", false),
		mk(2, "Banana", "Fruit", false),
		mk(3, "Citrus", "Fruit", true),
		mk(4, "Orange", "Citrus", false),
		mk(5, "Lemon", "Citrus", false),
		mk(6, "Vegetables", "", false),
		mk(7, "Carrot", "Vegetables", false),
		mk(8, "Lettuce", "Vegetables", false),
	}
}

// Expand returns recs with the named folders marked expanded.
func Expand(recs []model.Node, ids ...string) []model.Node {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]model.Node, len(recs))
	for i, r := range recs {
		if want[r.ID] {
			r.IsExpanded = true
		}
		out[i] = r
	}
	return out
}

// RapidForest draws an arbitrary acyclic forest for property tests. Every
// record's parent, when set, is an earlier record, so the result is always
// a forest.
func RapidForest(t *rapid.T) []model.Node {
	size := rapid.IntRange(0, 40).Draw(t, "size")
	titles := rapid.SampledFrom([]string{"Apple", "Banana", "Citrus", "Orange", "Lemon", "Carrot", "plan", "Notes", "ANNA"})
	out := make([]model.Node, 0, size)
	for i := 0; i < size; i++ {
		parent := ""
		if i > 0 && rapid.Bool().Draw(t, fmt.Sprintf("nested%d", i)) {
			parent = out[rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i))].ID
		}
		at := BaseTime.Add(time.Duration(rapid.IntRange(0, 1000).Draw(t, fmt.Sprintf("created%d", i))) * time.Second)
		out = append(out, model.Node{
			ID:         fmt.Sprintf("n%d", i),
			Title:      titles.Draw(t, fmt.Sprintf("title%d", i)),
			IsExpanded: rapid.Bool().Draw(t, fmt.Sprintf("expanded%d", i)),
			Order:      i,
			CreatedAt:  at,
			ModifiedAt: at,
			ParentID:   parent,
		})
	}
	return out
}
