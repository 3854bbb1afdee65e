package recipe_test

import (
	"reflect"
	"testing"

	"larder/internal/recipe"
)

const wellFormedResponse = `Recipe Name: Rustic Flatbread
Recipe Category: Main Course
Dietary Flags: Gluten-Free, Dairy-Free, Gluten-Free

Ingredients List:
- Flour (200, g)
- Salt (1 tsp)
- Olive Oil (2 tbsp)
- Water

Preparation Steps:
1. Mix the dry ingredients.
2. Knead for ten minutes.
3. Bake until golden.
Notes: resting the dough overnight improves texture.

Preparation Time: 20 minutes
Cook Time: 15
Total Time: [35]
Servings: 4
Difficulty Level: Easy

Short Visual Description: A charred flatbread on a wooden board.`

func TestParseWellFormedResponse(t *testing.T) {
	rec := recipe.Parse(wellFormedResponse)

	if rec.Name != "Rustic Flatbread" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.Category != recipe.CategoryMainCourse {
		t.Errorf("Category = %q", rec.Category)
	}
	wantFlags := []string{"Gluten-Free", "Dairy-Free"}
	if !reflect.DeepEqual(rec.Flags, wantFlags) {
		t.Errorf("Flags = %v, want %v (deduplicated, order preserved)", rec.Flags, wantFlags)
	}

	wantIngredients := []recipe.Ingredient{
		{Name: "Flour", Quantity: "200", Unit: "g"},
		{Name: "Salt", Quantity: "1", Unit: "tsp"},
		{Name: "Olive Oil", Quantity: "2", Unit: "tbsp"},
		{Name: "Water"},
	}
	if !reflect.DeepEqual(rec.Ingredients, wantIngredients) {
		t.Errorf("Ingredients = %+v, want %+v", rec.Ingredients, wantIngredients)
	}

	wantSteps := []string{
		"Mix the dry ingredients.",
		"Knead for ten minutes.",
		"Bake until golden.",
	}
	if !reflect.DeepEqual(rec.Steps, wantSteps) {
		t.Errorf("Steps = %v, want %v (unprefixed commentary dropped)", rec.Steps, wantSteps)
	}

	if rec.PrepMinutes != 20 || rec.CookMinutes != 15 || rec.TotalMinutes != 35 || rec.Servings != 4 {
		t.Errorf("numeric fields = %d/%d/%d/%d", rec.PrepMinutes, rec.CookMinutes, rec.TotalMinutes, rec.Servings)
	}
	if rec.Difficulty != recipe.DifficultyEasy {
		t.Errorf("Difficulty = %q", rec.Difficulty)
	}
	if rec.Description != "A charred flatbread on a wooden board." {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestParseStepsDropsUnprefixedLines(t *testing.T) {
	rec := recipe.Parse("Preparation Steps:\n1. Mix.\n2. Bake.\nNotes: optional")
	want := []string{"Mix.", "Bake."}
	if !reflect.DeepEqual(rec.Steps, want) {
		t.Fatalf("Steps = %v, want %v", rec.Steps, want)
	}
}

func TestParseNumericFieldsNeverFail(t *testing.T) {
	tests := []struct {
		body string
		want int
	}{
		{"abc", 0},
		{"", 0},
		{"30", 30},
		{"30 minutes", 30},
		{"approx. 45 min", 45},
		{"[60]", 60},
		{"-5", 5},
	}
	for _, tt := range tests {
		rec := recipe.Parse("Servings: " + tt.body)
		if rec.Servings != tt.want {
			t.Errorf("Servings(%q) = %d, want %d", tt.body, rec.Servings, tt.want)
		}
	}
}

func TestParseEmptyInputYieldsDefaults(t *testing.T) {
	rec := recipe.Parse("")
	if rec.Name != recipe.DefaultName {
		t.Errorf("Name = %q, want %q", rec.Name, recipe.DefaultName)
	}
	if rec.Category != recipe.CategoryOther {
		t.Errorf("Category = %q, want Other", rec.Category)
	}
	if rec.Difficulty != recipe.DifficultyMedium {
		t.Errorf("Difficulty = %q, want Medium", rec.Difficulty)
	}
	if len(rec.Flags) != 0 || len(rec.Ingredients) != 0 || len(rec.Steps) != 0 {
		t.Errorf("expected empty collections, got %+v", rec)
	}
	if rec.PrepMinutes != 0 || rec.CookMinutes != 0 || rec.TotalMinutes != 0 || rec.Servings != 0 {
		t.Errorf("expected zero numerics, got %+v", rec)
	}
}

func TestParseIngredientLineVariants(t *testing.T) {
	tests := []struct {
		line string
		want recipe.Ingredient
	}{
		{"Flour (200, g)", recipe.Ingredient{Name: "Flour", Quantity: "200", Unit: "g"}},
		{"Salt (1 tsp)", recipe.Ingredient{Name: "Salt", Quantity: "1", Unit: "tsp"}},
		{"Honey (a drizzle, to taste, optional)", recipe.Ingredient{Name: "Honey", Quantity: "a drizzle", Unit: "to taste"}},
		{"Basil (handful)", recipe.Ingredient{Name: "Basil", Quantity: "handful"}},
		{"Water", recipe.Ingredient{Name: "Water"}},
		{"Lemon (unclosed", recipe.Ingredient{Name: "Lemon (unclosed"}},
	}
	for _, tt := range tests {
		if got := recipe.ParseIngredientLine(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseIngredientLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParseCategoryNormalizesCase(t *testing.T) {
	tests := []struct {
		in   string
		want recipe.Category
	}{
		{"main course", recipe.CategoryMainCourse},
		{"DESSERT", recipe.CategoryDessert},
		{" Salad ", recipe.CategorySalad},
		{"Entrée", recipe.CategoryOther},
		{"", recipe.CategoryOther},
	}
	for _, tt := range tests {
		if got := recipe.ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseToleratesMissingSections(t *testing.T) {
	rec := recipe.Parse("Recipe Name: Toast\nServings: 2")
	if rec.Name != "Toast" {
		t.Errorf("Name = %q", rec.Name)
	}
	if rec.Servings != 2 {
		t.Errorf("Servings = %d", rec.Servings)
	}
	if rec.Category != recipe.CategoryOther {
		t.Errorf("Category = %q", rec.Category)
	}
}

func TestIngredientDisplayRoundTrip(t *testing.T) {
	ing := recipe.Ingredient{Name: "Flour", Quantity: "200", Unit: "g"}
	if got := ing.Display(); got != "Flour (200 g)" {
		t.Fatalf("Display = %q", got)
	}
	if got := recipe.ParseIngredientLine(ing.Display()); !reflect.DeepEqual(got, ing) {
		t.Fatalf("round trip = %+v", got)
	}
}
