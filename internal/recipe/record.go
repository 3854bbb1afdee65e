package recipe

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category classifies a recipe into one of a fixed set of courses.
type Category string

const (
	CategoryAppetizer  Category = "Appetizer"
	CategoryMainCourse Category = "Main Course"
	CategorySideDish   Category = "Side Dish"
	CategoryDessert    Category = "Dessert"
	CategoryBeverage   Category = "Beverage"
	CategorySnack      Category = "Snack"
	CategorySalad      Category = "Salad"
	CategoryBreakfast  Category = "Breakfast"
	CategoryOther      Category = "Other"
)

var allCategories = []Category{
	CategoryAppetizer,
	CategoryMainCourse,
	CategorySideDish,
	CategoryDessert,
	CategoryBeverage,
	CategorySnack,
	CategorySalad,
	CategoryBreakfast,
	CategoryOther,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(allCategories))
	for _, c := range allCategories {
		set[c] = struct{}{}
	}
	return set
}()

var titleCaser = cases.Title(language.English)

// ParseCategory normalizes a free-form category string into a known Category.
// Unrecognized values map to CategoryOther.
func ParseCategory(value string) Category {
	normalized := Category(titleCaser.String(strings.TrimSpace(value)))
	if _, ok := categorySet[normalized]; ok {
		return normalized
	}
	return CategoryOther
}

// AllCategories returns the ordered list of known categories.
func AllCategories() []Category {
	cp := make([]Category, len(allCategories))
	copy(cp, allCategories)
	return cp
}

// Difficulty rates how demanding a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyAdvanced Difficulty = "Advanced"
)

// ParseDifficulty normalizes a free-form difficulty string. Unrecognized
// values map to DifficultyMedium.
func ParseDifficulty(value string) Difficulty {
	switch Difficulty(titleCaser.String(strings.TrimSpace(value))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyAdvanced:
		return DifficultyAdvanced
	default:
		return DifficultyMedium
	}
}

// Ingredient is a single list entry. Quantity and Unit are optional free text.
type Ingredient struct {
	Name     string
	Quantity string
	Unit     string
}

// Display renders the ingredient back into its canonical line form,
// e.g. "Flour (200 g)".
func (i Ingredient) Display() string {
	parts := make([]string, 0, 2)
	if i.Quantity != "" {
		parts = append(parts, i.Quantity)
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	if len(parts) == 0 {
		return i.Name
	}
	return i.Name + " (" + strings.Join(parts, " ") + ")"
}

// Record is the typed result of parsing one analysis response. The extractor
// creates it; persistence returns a new value carrying PersistedID. Records
// are never mutated in place.
type Record struct {
	Name         string
	Category     Category
	Flags        []string
	Ingredients  []Ingredient
	Steps        []string
	PrepMinutes  int
	CookMinutes  int
	TotalMinutes int
	Servings     int
	Difficulty   Difficulty
	Description  string

	// Populated by pipeline stages, not by the extractor.
	ImageURL    string
	PersistedID string
	CreatedAt   time.Time
}
