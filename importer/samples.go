package importer

import (
	"context"
	"fmt"
	"time"

	"recipeportal/models"
)

// Samples are the recipes the seed command starts a fresh catalog with.
func Samples() []models.Recipe {
	return []models.Recipe{
		{
			Title:        "Rustic Roasted Tomato Basil Soup",
			Image:        "https://images.unsplash.com/photo-1547592180-85f173990554?auto=format&fit=crop&w=800&q=80",
			Description:  "A comforting, velvety soup made with vine-ripened roasted tomatoes, fresh basil, and a touch of cream. Perfect for chilly evenings.",
			Ingredients:  []string{"3 lbs Roma tomatoes", "1 head garlic", "1/2 cup basil", "1 cup broth", "1/2 cup cream"},
			Instructions: []string{"Roast tomatoes and garlic.", "Blend with basil.", "Simmer with broth and cream."},
			Tips:         "Serve with grilled cheese.",
			PrepTime:     "10 mins",
			CookTime:     "45 mins",
			Servings:     "4 bowls",
			Difficulty:   "Easy",
			Cuisine:      "Italian",
			DietaryType:  models.DietaryVeg,
		},
		{
			Title:        "Lemon Herb Roasted Chicken",
			Image:        "https://images.unsplash.com/photo-1598103442097-8b74394b95c6?auto=format&fit=crop&w=800&q=80",
			Description:  "Juicy, tender chicken with crispy skin, infused with zesty lemon and aromatic rosemary.",
			Ingredients:  []string{"1 whole chicken", "2 lemons", "Rosemary", "Butter", "Garlic"},
			Instructions: []string{"Preheat oven 425F.", "Season chicken.", "Roast 1h 15m."},
			Tips:         "Rest for 15 mins before carving.",
			PrepTime:     "15 mins",
			CookTime:     "1 hr 15 mins",
			Servings:     "5 people",
			Difficulty:   "Medium",
			Cuisine:      "French",
			DietaryType:  models.DietaryNonVeg,
		},
		{
			Title:        "Artisan Sourdough Bread",
			Image:        "https://wildthistlekitchen.com/wp-content/uploads/2025/02/Artisan-Sourdough-Bread-Recipe-1-4.jpg",
			Description:  "Crusty on the outside, soft and airy on the inside. This no-knead sourdough is worth the wait.",
			Ingredients:  []string{"500g bread flour", "350g water", "100g starter", "10g salt"},
			Instructions: []string{"Mix ingredients.", "Fold every 30m.", "Ferment 6h.", "Bake 450F."},
			Tips:         "Use steam in oven for crust.",
			PrepTime:     "30 mins",
			CookTime:     "45 mins",
			Servings:     "1 loaf",
			Difficulty:   "Hard",
			DietaryType:  models.DietaryVeg,
		},
		{
			Title:        "Berry & Fig Glazed Tart",
			Image:        "https://images.unsplash.com/photo-1519915028121-7d3463d20b13?auto=format&fit=crop&w=800&q=80",
			Description:  "A stunning dessert featuring fresh seasonal berries and a sweet fig glaze atop a buttery crust.",
			Ingredients:  []string{"Tart shell", "Custard filling", "Mixed Berries", "Fig jam"},
			Instructions: []string{"Bake tart shell.", "Fill with custard.", "Top with fruit.", "Glaze."},
			Tips:         "Assemble just before serving to keep crust crisp.",
			PrepTime:     "40 mins",
			CookTime:     "20 mins",
			Servings:     "8 slices",
			Difficulty:   "Medium",
			Cuisine:      "French",
			DietaryType:  models.DietaryVeg,
		},
		{
			Title:        "Avocado & Egg Toast",
			Image:        "https://images.unsplash.com/photo-1525351444148-18fc4a48502d?auto=format&fit=crop&w=800&q=80",
			Description:  "The quintessential brunch staple. Creamy avocado, perfectly poached egg, and red pepper flakes.",
			Ingredients:  []string{"Sourdough slice", "1 Avocado", "1 Egg", "Chili flakes", "Lemon"},
			Instructions: []string{"Toast bread.", "Mash avocado with lemon.", "Poach egg.", "Assemble."},
			Tips:         "Use fresh free-range eggs for better yolks.",
			PrepTime:     "5 mins",
			CookTime:     "5 mins",
			Servings:     "1 person",
			Difficulty:   "Easy",
			DietaryType:  models.DietaryNonVeg,
		},
	}
}

// SeedStore is the part of db.RecipeStore the seed command needs.
type SeedStore interface {
	Inserter
	DeleteAll(ctx context.Context) (int64, error)
}

// Seed replaces the whole catalog with Samples. Creation times are spaced a
// minute apart so the listing order matches the sample order.
func Seed(ctx context.Context, store SeedStore, now time.Time) (deleted int64, inserted int, err error) {
	deleted, err = store.DeleteAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("importer: clear recipes: %w", err)
	}
	samples := Samples()
	for i := range samples {
		samples[i].ApplyDefaults(now.Add(-time.Duration(i) * time.Minute))
	}
	inserted, err = store.InsertMany(ctx, samples)
	if err != nil {
		return deleted, inserted, fmt.Errorf("importer: insert samples: %w", err)
	}
	return deleted, inserted, nil
}
