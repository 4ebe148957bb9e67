package datasource

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/accordion/pkg/model"
	"github.com/vanderheijden86/accordion/pkg/testutil"
)

// storeFactories returns every backend available in this environment.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	factories := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "folders.db"))
			require.NoError(t, err)
			return s
		},
		"sqlite-memory": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), ":memory:")
			require.NoError(t, err)
			return s
		},
		"json": func(t *testing.T) Store {
			s, err := OpenJSON(filepath.Join(t.TempDir(), "sub", "folders.json"))
			require.NoError(t, err)
			return s
		},
	}
	if dsn := os.Getenv("ACCORDION_TEST_POSTGRES"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Store {
			s, err := OpenPostgres(context.Background(), dsn)
			require.NoError(t, err)
			require.NoError(t, s.Truncate(context.Background()))
			return s
		}
	}
	return factories
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func idsOf(recs []model.Node) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func sortedIDs(recs []model.Node) []string {
	out := idsOf(recs)
	sort.Strings(out)
	return out
}

func TestStoreCreateAndList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		recs, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, recs)

		want := testutil.SampleFolders()
		for _, r := range want {
			require.NoError(t, s.Create(ctx, r))
		}

		got, err := s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, sortedIDs(want), sortedIDs(got))

		byID := make(map[string]model.Node)
		for _, r := range got {
			byID[r.ID] = r
		}
		citrus := byID["Citrus"]
		require.Equal(t, "Fruit", citrus.ParentID)
		require.True(t, citrus.IsExpanded)
		require.Equal(t, 3, citrus.Order)
		require.True(t, citrus.CreatedAt.Equal(testutil.BaseTime.Add(3*time.Minute)), "created_at round trip: %v", citrus.CreatedAt)
		require.Empty(t, byID["Fruit"].ParentID)
	})
}

func TestStoreCreateRejectsDuplicatesAndInvalid(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		n := model.Node{ID: "a", Title: "A", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}
		require.NoError(t, s.Create(ctx, n))
		require.Error(t, s.Create(ctx, n))
		require.Error(t, s.Create(ctx, model.Node{Title: "no id"}))
	})
}

func TestStoreFetchRoots(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveAll(ctx, testutil.SampleFolders()))

		roots, err := s.FetchRoots(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"Fruit", "Vegetables"}, idsOf(roots))

		roots, err = s.FetchRoots(ctx, "VEG")
		require.NoError(t, err)
		require.Equal(t, []string{"Vegetables"}, idsOf(roots))

		roots, err = s.FetchRoots(ctx, "apple")
		require.NoError(t, err)
		require.Empty(t, roots, "children never come back as roots")
	})
}

func TestStoreUpdate(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveAll(ctx, testutil.SampleFolders()))

		recs, err := s.List(ctx)
		require.NoError(t, err)
		var apple model.Node
		for _, r := range recs {
			if r.ID == "Apple" {
				apple = r
			}
		}
		apple.Title = "Green Apple"
		apple.IsExpanded = true
		require.NoError(t, s.Update(ctx, apple))

		recs, err = s.List(ctx)
		require.NoError(t, err)
		for _, r := range recs {
			if r.ID == "Apple" {
				require.Equal(t, "Green Apple", r.Title)
				require.True(t, r.IsExpanded)
			}
		}

		err = s.Update(ctx, model.Node{ID: "missing"})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreSaveAllUpserts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		recs := testutil.NewDefault().Wide(3)
		require.NoError(t, s.SaveAll(ctx, recs))

		// Reorder, and add a new child whose parent comes later in the batch.
		recs[0].Order, recs[2].Order = 2, 0
		child := model.Node{ID: "late-child", ParentID: "late-parent", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}
		parent := model.Node{ID: "late-parent", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime, Order: 9}
		require.NoError(t, s.SaveAll(ctx, []model.Node{recs[0], recs[2], child, parent}))

		got, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 5)
		orders := make(map[string]int)
		for _, r := range got {
			orders[r.ID] = r.Order
		}
		require.Equal(t, 2, orders[recs[0].ID])
		require.Equal(t, 0, orders[recs[2].ID])
	})
}

func TestStoreSaveAllIsAllOrNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		good := model.Node{ID: "good", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}
		bad := model.Node{ID: "bad", ParentID: "bad"}
		require.Error(t, s.SaveAll(ctx, []model.Node{good, bad}))

		recs, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, recs)
	})
}

func TestStoreDeleteCascades(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveAll(ctx, testutil.SampleFolders()))

		require.NoError(t, s.Delete(ctx, "Citrus"))
		recs, err := s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Apple", "Banana", "Carrot", "Fruit", "Lettuce", "Vegetables"}, sortedIDs(recs))

		require.NoError(t, s.Delete(ctx, "Fruit"))
		recs, err = s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"Carrot", "Lettuce", "Vegetables"}, sortedIDs(recs))

		require.ErrorIs(t, s.Delete(ctx, "Fruit"), ErrNotFound)
	})
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folders.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveAll(ctx, testutil.SampleFolders()))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, len(testutil.SampleFolders()))
}

func TestJSONDocumentLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folders.json")
	s, err := OpenJSON(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveAll(ctx, testutil.SampleFolders()[:1]))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"version": 1`)
	require.Contains(t, string(data), `"folders": [`)
	require.Contains(t, string(data), `"title": "Fruit"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp", "temp file left behind")
	}
}

func TestJSONRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folders.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "folders": []}`), 0o644))
	s, err := OpenJSON(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.List(context.Background())
	require.ErrorContains(t, err, "newer than supported")
}

func TestJSONSharedBetweenHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "folders.json")
	a, err := OpenJSON(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenJSON(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Create(ctx, model.Node{ID: "x", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}))
	require.NoError(t, b.Create(ctx, model.Node{ID: "y", CreatedAt: testutil.BaseTime, ModifiedAt: testutil.BaseTime}))

	recs, err := a.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, idsOf(recs))
}
