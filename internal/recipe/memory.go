// Package recipe provides recipe source implementations.
package recipe

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cookmode/internal/domain"
	"cookmode/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	src.seed()
	return src
}

// List returns summaries of all available recipes.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, domain.RecipeSummary{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Tags:        r.Tags,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a recipe by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Search returns summaries of recipes whose name, description, or tags
// contain the query (case-insensitive).
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.RecipeSummary
	for _, r := range s.recipes {
		if matches(r, q) {
			out = append(out, domain.RecipeSummary{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				Tags:        r.Tags,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.log.Debug("search %q matched %d recipes", query, len(out))
	return out, nil
}

func matches(r *domain.Recipe, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Add registers a recipe, replacing any existing one with the same ID.
func (s *MemorySource) Add(r *domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[r.ID] = r
}

// seed loads the built-in recipes.
func (s *MemorySource) seed() {
	for _, r := range builtins() {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d built-in recipes", len(s.recipes))
}

func builtins() []*domain.Recipe {
	ing := func(name string, qty float64, unit string) domain.Ingredient {
		return domain.Ingredient{Name: name, Quantity: qty, Unit: unit}
	}

	pasta := &domain.Recipe{
		ID:          "tomato-basil-pasta",
		Name:        "Tomato Basil Pasta",
		Description: "A quick weeknight pasta with a fresh tomato and basil sauce.",
		Servings:    2,
		Tags:        []string{"pasta", "vegetarian", "quick"},
		Ingredients: []domain.Ingredient{
			ing("spaghetti", 200, "grams"),
			ing("ripe tomatoes", 4, "pieces"),
			ing("garlic cloves", 2, "pieces"),
			ing("fresh basil", 1, "handful"),
			ing("olive oil", 3, "tablespoons"),
			{Name: "chili flakes", Quantity: 1, Unit: "pinch", Optional: true},
		},
		Steps: []domain.Step{
			{
				Order:       1,
				Instruction: "Bring a large pot of salted water to a boil.",
				Tips:        []string{"Salt the water until it tastes like the sea."},
			},
			{
				Order:       2,
				Instruction: "Cook the spaghetti until al dente.",
				Duration:    9 * time.Minute,
				Ingredients: []domain.Ingredient{ing("spaghetti", 200, "grams")},
			},
			{
				Order:       3,
				Instruction: "Saute the garlic in olive oil over medium heat, then add the chopped tomatoes.",
				Duration:    2 * time.Minute,
				Ingredients: []domain.Ingredient{
					ing("garlic cloves", 2, "pieces"),
					ing("olive oil", 3, "tablespoons"),
					ing("ripe tomatoes", 4, "pieces"),
				},
				Tips: []string{"Take the garlic off the heat before it browns."},
			},
			{
				Order:       4,
				Instruction: "Simmer the sauce until it thickens slightly.",
				Duration:    5 * time.Minute,
			},
			{
				Order:       5,
				Instruction: "Toss the drained pasta with the sauce and torn basil, then serve.",
				Ingredients: []domain.Ingredient{ing("fresh basil", 1, "handful")},
			},
		},
	}

	eggs := &domain.Recipe{
		ID:          "soft-boiled-eggs",
		Name:        "Soft Boiled Eggs",
		Description: "Jammy six-and-a-half-minute eggs with toast soldiers.",
		Servings:    1,
		Tags:        []string{"breakfast", "eggs", "quick"},
		Ingredients: []domain.Ingredient{
			ing("eggs", 2, "pieces"),
			ing("bread slices", 2, "pieces"),
			ing("butter", 1, "tablespoon"),
		},
		Steps: []domain.Step{
			{
				Order:       1,
				Instruction: "Bring a small pot of water to a rolling boil.",
			},
			{
				Order:       2,
				Instruction: "Lower the eggs in gently and boil them.",
				Duration:    6*time.Minute + 30*time.Second,
				Ingredients: []domain.Ingredient{ing("eggs", 2, "pieces")},
				Tips:        []string{"Use a spoon so the shells don't crack on the bottom."},
			},
			{
				Order:       3,
				Instruction: "Toast the bread and butter it while the eggs cook.",
				Duration:    3 * time.Minute,
				Ingredients: []domain.Ingredient{
					ing("bread slices", 2, "pieces"),
					ing("butter", 1, "tablespoon"),
				},
			},
			{
				Order:       4,
				Instruction: "Move the eggs to cold water for a minute, then peel and serve.",
				Duration:    1 * time.Minute,
			},
		},
	}

	stew := &domain.Recipe{
		ID:          "white-bean-stew",
		Name:        "White Bean Stew",
		Description: "A slow, hearty stew of white beans, rosemary, and greens.",
		Servings:    4,
		Tags:        []string{"stew", "vegan", "slow"},
		Ingredients: []domain.Ingredient{
			ing("white beans, cooked", 3, "cups"),
			ing("onion", 1, "pieces"),
			ing("carrots", 2, "pieces"),
			ing("vegetable stock", 4, "cups"),
			ing("rosemary sprigs", 2, "pieces"),
			ing("kale", 1, "handful"),
		},
		Steps: []domain.Step{
			{
				Order:       1,
				Instruction: "Soften the diced onion and carrots in a heavy pot.",
				Duration:    8 * time.Minute,
				Ingredients: []domain.Ingredient{
					ing("onion", 1, "pieces"),
					ing("carrots", 2, "pieces"),
				},
			},
			{
				Order:       2,
				Instruction: "Add the beans, stock, and rosemary, and bring to a simmer.",
				Ingredients: []domain.Ingredient{
					ing("white beans, cooked", 3, "cups"),
					ing("vegetable stock", 4, "cups"),
					ing("rosemary sprigs", 2, "pieces"),
				},
			},
			{
				Order:       3,
				Instruction: "Simmer uncovered, stirring now and then.",
				Duration:    25 * time.Minute,
				Tips:        []string{"Mash a ladleful of beans against the pot to thicken the broth."},
			},
			{
				Order:       4,
				Instruction: "Stir in the kale and let it wilt.",
				Duration:    3 * time.Minute,
				Ingredients: []domain.Ingredient{ing("kale", 1, "handful")},
			},
			{
				Order:       5,
				Instruction: "Season, discard the rosemary stems, and serve.",
			},
		},
	}

	return []*domain.Recipe{pasta, eggs, stew}
}
