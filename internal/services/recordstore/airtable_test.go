package recordstore_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"larder/internal/config"
	"larder/internal/recipe"
	"larder/internal/services"
	"larder/internal/services/recordstore"
)

func sampleRecord() recipe.Record {
	return recipe.Record{
		Name:     "Lasagna",
		Category: recipe.CategoryMainCourse,
		Flags:    []string{"Vegetarian"},
		Ingredients: []recipe.Ingredient{
			{Name: "Flour", Quantity: "200", Unit: "g"},
			{Name: "Salt", Quantity: "1", Unit: "tsp"},
		},
		Steps:        []string{"Mix the dough", "Bake until golden"},
		PrepMinutes:  20,
		CookMinutes:  40,
		TotalMinutes: 60,
		Servings:     4,
		Difficulty:   recipe.DifficultyMedium,
		Description:  "A layered pasta dish",
		ImageURL:     "https://cdn.example.net/recipes/1_lasagna.jpg",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newAirtable(t *testing.T, handler http.HandlerFunc) *recordstore.Airtable {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return recordstore.NewAirtable(
		config.RecordStore{APIKey: "key", BaseID: "appBase", Table: "Recipes"},
		recordstore.WithAirtableBaseURL(server.URL),
		recordstore.WithAirtableHTTPClient(server.Client()),
	)
}

func TestPersistFlattensFields(t *testing.T) {
	var captured map[string]any
	store := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"id":"recABC123"}`))
	})

	stored, err := store.Persist(context.Background(), sampleRecord())
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if stored.PersistedID != "recABC123" {
		t.Fatalf("persisted id = %q", stored.PersistedID)
	}

	fields, ok := captured["fields"].(map[string]any)
	if !ok {
		t.Fatalf("request has no fields object: %v", captured)
	}
	if fields["Ingredients"] != "Flour (200 g)\nSalt (1 tsp)" {
		t.Errorf("ingredients flattening wrong: %q", fields["Ingredients"])
	}
	if fields["Preparation Steps"] != "1. Mix the dough\n2. Bake until golden" {
		t.Errorf("steps flattening wrong: %q", fields["Preparation Steps"])
	}
	if fields["Dietary Flags"] != "Vegetarian" {
		t.Errorf("flags flattening wrong: %q", fields["Dietary Flags"])
	}
	if fields["Created"] != "2026-03-01T12:00:00Z" {
		t.Errorf("created timestamp wrong: %q", fields["Created"])
	}
}

func TestListMapsRowsBack(t *testing.T) {
	store := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[{"id":"rec1","fields":{
			"Recipe Name":"Lasagna",
			"Recipe Category":"Main Course",
			"Dietary Flags":"Vegetarian, Gluten-Free",
			"Ingredients":"Flour (200 g)\nSalt (1 tsp)",
			"Preparation Steps":"1. Mix the dough\n2. Bake until golden",
			"Preparation Time":20,
			"Servings":4,
			"Difficulty Level":"Medium",
			"Created":"2026-03-01T12:00:00Z"
		}}]}`))
	})

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PersistedID != "rec1" || rec.Name != "Lasagna" || rec.Category != recipe.CategoryMainCourse {
		t.Fatalf("header fields wrong: %+v", rec)
	}
	if len(rec.Ingredients) != 2 || rec.Ingredients[0] != (recipe.Ingredient{Name: "Flour", Quantity: "200", Unit: "g"}) {
		t.Fatalf("ingredients mapping wrong: %+v", rec.Ingredients)
	}
	if len(rec.Steps) != 2 || rec.Steps[0] != "Mix the dough" {
		t.Fatalf("steps mapping wrong: %+v", rec.Steps)
	}
	if len(rec.Flags) != 2 || rec.Flags[1] != "Gluten-Free" {
		t.Fatalf("flags mapping wrong: %+v", rec.Flags)
	}
}

func TestValidateConfigClassifiesAuthErrors(t *testing.T) {
	store := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	})

	err := store.ValidateConfig(context.Background())
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("error should carry the api message: %v", err)
	}
}

func TestPersistReportsServerError(t *testing.T) {
	store := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := store.Persist(context.Background(), sampleRecord())
	if err == nil || !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("expected http 500 error, got %v", err)
	}
	if services.IsConfiguration(err) {
		t.Fatalf("server errors are transport failures, got %v", err)
	}
}
