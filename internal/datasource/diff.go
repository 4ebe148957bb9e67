package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/accordion/pkg/model"
)

// SourceDiff represents differences between two data sources
type SourceDiff struct {
	// SourceA is the description of the first source
	SourceA string `json:"source_a"`
	// SourceB is the description of the second source
	SourceB string `json:"source_b"`
	// MissingInA contains folder IDs present in B but not in A
	MissingInA []string `json:"missing_in_a,omitempty"`
	// MissingInB contains folder IDs present in A but not in B
	MissingInB []string `json:"missing_in_b,omitempty"`
	// Mismatches contains folders whose compared fields differ
	Mismatches []FieldDifference `json:"mismatches,omitempty"`
	// CountA is the number of folders in source A
	CountA int `json:"count_a"`
	// CountB is the number of folders in source B
	CountB int `json:"count_b"`
}

// FieldDifference is one differing field of one folder
type FieldDifference struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.Mismatches) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d folders each)", d.CountA)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&b, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	writeIDs(&b, d.MissingInA, fmt.Sprintf("folders in %s but not %s", d.SourceB, d.SourceA))
	writeIDs(&b, d.MissingInB, fmt.Sprintf("folders in %s but not %s", d.SourceA, d.SourceB))
	if len(d.Mismatches) > 0 {
		fmt.Fprintf(&b, "  - %d differing fields\n", len(d.Mismatches))
		if len(d.Mismatches) <= 5 {
			for _, m := range d.Mismatches {
				fmt.Fprintf(&b, "    - %s %s: %q vs %q\n", m.ID, m.Field, m.A, m.B)
			}
		}
	}
	return b.String()
}

func writeIDs(b *strings.Builder, ids []string, what string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(b, "  - %d %s\n", len(ids), what)
	if len(ids) <= 5 {
		for _, id := range ids {
			fmt.Fprintf(b, "    - %s\n", id)
		}
	}
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// CompareFields specifies which fields to compare: title, parent,
	// order, expanded (empty = title and parent)
	CompareFields []string
	// MaxDifferences limits the number of differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		CompareFields:  []string{"title", "parent"},
		MaxDifferences: 100,
	}
}

var fieldGetters = map[string]func(model.Node) string{
	"title":    func(n model.Node) string { return n.Title },
	"parent":   func(n model.Node) string { return n.ParentID },
	"order":    func(n model.Node) string { return fmt.Sprint(n.Order) },
	"expanded": func(n model.Node) string { return fmt.Sprint(n.IsExpanded) },
}

// DetectInconsistencies compares two sets of folders and returns differences.
// Result slices are sorted by id.
func DetectInconsistencies(a, b []model.Node, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}
	fields := opts.CompareFields
	if len(fields) == 0 {
		fields = DefaultDiffOptions().CompareFields
	}
	room := func(n int) bool { return opts.MaxDifferences == 0 || n < opts.MaxDifferences }

	mapA := make(map[string]model.Node, len(a))
	for _, n := range a {
		mapA[n.ID] = n
	}
	mapB := make(map[string]model.Node, len(b))
	for _, n := range b {
		mapB[n.ID] = n
	}
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	for _, id := range sortedKeys(mapA) {
		if _, ok := mapB[id]; !ok && room(len(diff.MissingInB)) {
			diff.MissingInB = append(diff.MissingInB, id)
		}
	}
	for _, id := range sortedKeys(mapB) {
		nb := mapB[id]
		na, ok := mapA[id]
		if !ok {
			if room(len(diff.MissingInA)) {
				diff.MissingInA = append(diff.MissingInA, id)
			}
			continue
		}
		for _, f := range fields {
			get, known := fieldGetters[f]
			if !known {
				continue
			}
			if va, vb := get(na), get(nb); va != vb && room(len(diff.Mismatches)) {
				diff.Mismatches = append(diff.Mismatches, FieldDifference{ID: id, Field: f, A: va, B: vb})
			}
		}
	}
	return diff
}

func sortedKeys(m map[string]model.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CompareSources opens and compares two stores by DSN.
func CompareSources(ctx context.Context, dsnA, dsnB string, opts DiffOptions) (*SourceDiff, error) {
	var a, b []model.Node
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if a, err = listDSN(gctx, dsnA); err != nil {
			return fmt.Errorf("failed to load source A (%s): %w", redact(dsnA), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if b, err = listDSN(gctx, dsnB); err != nil {
			return fmt.Errorf("failed to load source B (%s): %w", redact(dsnB), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	diff := DetectInconsistencies(a, b, redact(dsnA), redact(dsnB), opts)
	return &diff, nil
}

func listDSN(ctx context.Context, dsn string) ([]model.Node, error) {
	s, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.List(ctx)
}

// Copy writes every folder of src into dst in one SaveAll and returns the
// number copied. Existing folders in dst with the same ids are replaced.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	recs, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}
	if err := dst.SaveAll(ctx, recs); err != nil {
		return 0, fmt.Errorf("write destination: %w", err)
	}
	return len(recs), nil
}
