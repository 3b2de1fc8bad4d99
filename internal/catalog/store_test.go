// File path: internal/catalog/store_test.go
package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntries() []Entry {
	return []Entry{
		{ID: 1, ClassName: "Tomato - Leaf Mold", Crop: "Tomato", Condition: "Leaf Mold", ImagePath: "a.jpg", Text: "t1"},
		{ID: 2, ClassName: "Tomato - healthy", Crop: "Tomato", Condition: "healthy", IsHealthy: true, ImagePath: "b.jpg", Text: "t2"},
		{ID: 3, ClassName: "Rice - Brown spot", Crop: "Rice", Condition: "Brown spot", ImagePath: "c.jpg", Text: "t3"},
	}
}

func TestReplaceAndAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Replace(ctx, sampleEntries()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	entries, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != 1 || entries[2].ID != 3 {
		t.Fatalf("entries not ordered by id: %+v", entries)
	}
	if !entries[1].IsHealthy || entries[0].IsHealthy {
		t.Fatalf("is_healthy not round-tripped: %+v", entries)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestReplaceSwapsContents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Replace(ctx, sampleEntries()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	replacement := []Entry{{ID: 1, ClassName: "Corn - Common rust", Crop: "Corn", Condition: "Common rust", ImagePath: "d.jpg", Text: "t4"}}
	if err := store.Replace(ctx, replacement); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	entries, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 1 || entries[0].Crop != "Corn" {
		t.Fatalf("replace did not swap contents: %+v", entries)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Setenv("CATALOG_DB_PATH", "")
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
