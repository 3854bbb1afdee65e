package recordstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"larder/internal/recipe"
	"larder/internal/services/recordstore"
)

func openSQLite(t *testing.T) *recordstore.SQLite {
	t.Helper()
	store, err := recordstore.OpenSQLite(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLitePersistAndList(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	stored, err := store.Persist(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if stored.PersistedID == "" {
		t.Fatal("expected a generated id")
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PersistedID != stored.PersistedID || rec.Name != "Lasagna" {
		t.Fatalf("round trip header wrong: %+v", rec)
	}
	if rec.Category != recipe.CategoryMainCourse || rec.Difficulty != recipe.DifficultyMedium {
		t.Fatalf("enum round trip wrong: %+v", rec)
	}
	if len(rec.Ingredients) != 2 || rec.Ingredients[1] != (recipe.Ingredient{Name: "Salt", Quantity: "1", Unit: "tsp"}) {
		t.Fatalf("ingredients round trip wrong: %+v", rec.Ingredients)
	}
	if len(rec.Steps) != 2 || rec.Steps[1] != "Bake until golden" {
		t.Fatalf("steps round trip wrong: %+v", rec.Steps)
	}
	if !rec.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("created at round trip wrong: %v vs %v", rec.CreatedAt, stored.CreatedAt)
	}
}

func TestSQLiteListOrdersByCreation(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	first := sampleRecord()
	first.Name = "First"
	second := sampleRecord()
	second.Name = "Second"
	second.CreatedAt = first.CreatedAt.Add(time.Minute)

	if _, err := store.Persist(ctx, second); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Persist(ctx, first); err != nil {
		t.Fatal(err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Name != "First" || records[1].Name != "Second" {
		t.Fatalf("ordering wrong: %+v", records)
	}
}

func TestSQLiteValidateConfig(t *testing.T) {
	store := openSQLite(t)
	if err := store.ValidateConfig(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
