package recipe

import (
	"sort"
	"strings"
)

// DefaultName is used when the response carries no recipe name.
const DefaultName = "Unnamed Recipe"

// Section labels the model is instructed to emit, in prompt order. The
// extractor captures everything between one label and the next known label.
const (
	labelName        = "Recipe Name:"
	labelCategory    = "Recipe Category:"
	labelFlags       = "Dietary Flags:"
	labelIngredients = "Ingredients List:"
	labelSteps       = "Preparation Steps:"
	labelPrepTime    = "Preparation Time:"
	labelCookTime    = "Cook Time:"
	labelTotalTime   = "Total Time:"
	labelServings    = "Servings:"
	labelDifficulty  = "Difficulty Level:"
	labelDescription = "Short Visual Description:"
)

var sectionLabels = []string{
	labelName,
	labelCategory,
	labelFlags,
	labelIngredients,
	labelSteps,
	labelPrepTime,
	labelCookTime,
	labelTotalTime,
	labelServings,
	labelDifficulty,
	labelDescription,
}

// Parse converts one block of model output into a Record. It is a pure
// function: malformed or partial input never fails, every field falls back to
// its documented default.
func Parse(text string) Record {
	sections := splitSections(text)

	name := sections[labelName]
	if name == "" {
		name = DefaultName
	}

	return Record{
		Name:         name,
		Category:     ParseCategory(sections[labelCategory]),
		Flags:        parseFlags(sections[labelFlags]),
		Ingredients:  parseIngredients(sections[labelIngredients]),
		Steps:        parseSteps(sections[labelSteps]),
		PrepMinutes:  parseMinutes(sections[labelPrepTime]),
		CookMinutes:  parseMinutes(sections[labelCookTime]),
		TotalMinutes: parseMinutes(sections[labelTotalTime]),
		Servings:     parseMinutes(sections[labelServings]),
		Difficulty:   ParseDifficulty(sections[labelDifficulty]),
		Description:  sections[labelDescription],
	}
}

// splitSections locates every known label in the text and captures the body
// between it and the next label (or end of text). Missing labels yield empty
// bodies.
func splitSections(text string) map[string]string {
	type marker struct {
		label string
		start int // index just past the label
		pos   int // index of the label itself
	}

	markers := make([]marker, 0, len(sectionLabels))
	for _, label := range sectionLabels {
		pos := strings.Index(text, label)
		if pos < 0 {
			continue
		}
		markers = append(markers, marker{label: label, start: pos + len(label), pos: pos})
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].pos < markers[j].pos })

	sections := make(map[string]string, len(sectionLabels))
	for _, label := range sectionLabels {
		sections[label] = ""
	}
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].pos
		}
		sections[m.label] = strings.TrimSpace(text[m.start:end])
	}
	return sections
}

func parseFlags(body string) []string {
	if body == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var flags []string
	for _, part := range strings.Split(body, ",") {
		flag := strings.TrimSpace(part)
		if flag == "" {
			continue
		}
		if _, dup := seen[flag]; dup {
			continue
		}
		seen[flag] = struct{}{}
		flags = append(flags, flag)
	}
	return flags
}

func parseIngredients(body string) []Ingredient {
	var ingredients []Ingredient
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if line == "" {
			continue
		}
		ingredients = append(ingredients, ParseIngredientLine(line))
	}
	return ingredients
}

// ParseIngredientLine splits one ingredient line into name plus an optional
// parenthesized quantity/unit expression. Inside the parentheses a comma is
// tried first as the separator, then the first whitespace; an expression with
// neither yields a quantity with no unit.
func ParseIngredientLine(line string) Ingredient {
	open := strings.Index(line, "(")
	if open < 0 {
		return Ingredient{Name: strings.TrimSpace(line)}
	}
	closing := strings.Index(line[open:], ")")
	if closing < 0 {
		return Ingredient{Name: strings.TrimSpace(line)}
	}

	name := strings.TrimSpace(line[:open])
	inner := strings.TrimSpace(line[open+1 : open+closing])

	if comma := strings.Index(inner, ","); comma >= 0 {
		return Ingredient{
			Name:     name,
			Quantity: strings.TrimSpace(inner[:comma]),
			Unit:     strings.TrimSpace(trimAfterNextComma(inner[comma+1:])),
		}
	}
	if fields := strings.Fields(inner); len(fields) > 1 {
		return Ingredient{
			Name:     name,
			Quantity: fields[0],
			Unit:     strings.Join(fields[1:], " "),
		}
	}
	return Ingredient{Name: name, Quantity: inner}
}

// trimAfterNextComma keeps only the first comma-separated token, matching the
// two-part quantity/unit contract.
func trimAfterNextComma(s string) string {
	if comma := strings.Index(s, ","); comma >= 0 {
		return s[:comma]
	}
	return s
}

// parseSteps keeps only lines prefixed with a numeral and a period, strips the
// prefix, and preserves line order. Unprefixed lines are model commentary and
// are dropped.
func parseSteps(body string) []string {
	var steps []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		step, ok := stripStepNumber(line)
		if !ok || step == "" {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}

func stripStepNumber(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

// parseMinutes extracts the first run of digits from the body, tolerating
// surrounding prose like "30 minutes" or "[45]". Anything without digits
// yields 0.
func parseMinutes(body string) int {
	start := -1
	for i := 0; i < len(body); i++ {
		if body[i] >= '0' && body[i] <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	value := 0
	for end < len(body) && body[end] >= '0' && body[end] <= '9' {
		digit := int(body[end] - '0')
		if value > (1<<31-1-digit)/10 {
			return 0
		}
		value = value*10 + digit
		end++
	}
	return value
}
