//go:build ignore

// generate_testdata.go creates folder stores of increasing size for
// benchmarking and manual testing.
// Usage: go run scripts/generate_testdata.go [output dir]
//
// Creates, in testdata/benchmark by default:
//
//	small.json   (~100 folders)
//	medium.json  (~1000 folders)
//	large.db     (~10000 folders, SQLite)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/testutil"
)

type datasetSpec struct {
	name     string
	roots    int
	depth    int
	children int
}

var datasets = []datasetSpec{
	{"small.json", 8, 2, 4},
	{"medium.json", 20, 3, 5},
	{"large.db", 40, 4, 6},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for _, ds := range datasets {
		gen := testutil.New(testutil.GeneratorConfig{
			Seed:        int64(ds.roots), // reproducible per dataset
			IDPrefix:    "BENCH",
			MaxDepth:    ds.depth,
			MaxChildren: ds.children,
			ExpandRatio: 0.3,
		})
		recs := gen.Forest(ds.roots)

		path := filepath.Join(outputDir, ds.name)
		_ = os.Remove(path)
		store, err := datasource.Open(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := store.SaveAll(ctx, recs); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		store.Close()
		fmt.Printf("  Written %s (%d folders)\n", path, len(recs))
	}

	fmt.Println("\nDone! Stores created in", outputDir)
}
