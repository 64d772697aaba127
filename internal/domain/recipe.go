// Package domain defines the core types and interfaces for cooking mode.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Recipe represents a complete cooking recipe.
type Recipe struct {
	ID          string
	Name        string
	Description string
	Servings    int
	Ingredients []Ingredient
	Steps       []Step
	Tags        []string
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// Ingredient represents a single ingredient with human-style quantities.
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string // "pieces", "cups", "tablespoons", "grams", ""
	Optional bool
}

// Step represents a single cooking step within a recipe.
type Step struct {
	Order       int // 1-based position, for display and speech
	Instruction string
	Duration    time.Duration // expected duration, 0 if untimed
	Ingredients []Ingredient  // subset used in this step, may be empty
	Tips        []string      // optional technique hints
}

// Timed reports whether the step carries a duration a timer can be
// attached to.
func (s Step) Timed() bool {
	return s.Duration > 0
}
