package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dietary types accepted by the grouped listing.
const (
	DietaryAll    = "All"
	DietaryVeg    = "Veg"
	DietaryNonVeg = "Non-Veg"
)

// Cuisine values that mean "not categorized".
const (
	CuisineUnknown = "Unknown"
	CuisineGlobal  = "Global"
)

// Field defaults applied when a recipe is created or imported.
const (
	DefaultImage      = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?auto=format&fit=crop&w=800&q=80"
	DefaultPrepTime   = "15 mins"
	DefaultCookTime   = "30 mins"
	DefaultServings   = "4"
	DefaultDifficulty = "Medium"
)

type Recipe struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title"`
	Image        string             `json:"image" bson:"image"`
	Description  string             `json:"description" bson:"description"`
	Ingredients  []string           `json:"ingredients" bson:"ingredients"`
	Instructions []string           `json:"instructions" bson:"instructions"`
	Tips         string             `json:"tips,omitempty" bson:"tips,omitempty"`
	PrepTime     string             `json:"prepTime" bson:"prepTime"`
	CookTime     string             `json:"cookTime" bson:"cookTime"`
	Servings     string             `json:"servings" bson:"servings"`
	Difficulty   string             `json:"difficulty" bson:"difficulty"`
	Cuisine      string             `json:"cuisine,omitempty" bson:"cuisine,omitempty"`
	Area         string             `json:"strArea,omitempty" bson:"strArea,omitempty"` // legacy alias of Cuisine
	DietaryType  string             `json:"dietaryType,omitempty" bson:"dietaryType,omitempty"`
	Source       string             `json:"source,omitempty" bson:"source,omitempty"`
	SourceURL    string             `json:"strSource,omitempty" bson:"strSource,omitempty"`
	UserName     string             `json:"userName,omitempty" bson:"userName,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// Category is the cuisine a recipe is grouped under: Cuisine, then the legacy
// Area, then CuisineUnknown.
func (r *Recipe) Category() string {
	if c := strings.TrimSpace(r.Cuisine); c != "" {
		return c
	}
	if a := strings.TrimSpace(r.Area); a != "" {
		return a
	}
	return CuisineUnknown
}

// ApplyDefaults fills every optional field that is empty. It does not touch
// ID or CreatedAt unless CreatedAt is zero.
func (r *Recipe) ApplyDefaults(now time.Time) {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	if strings.TrimSpace(r.Image) == "" {
		r.Image = DefaultImage
	}
	if r.PrepTime == "" {
		r.PrepTime = DefaultPrepTime
	}
	if r.CookTime == "" {
		r.CookTime = DefaultCookTime
	}
	if r.Servings == "" {
		r.Servings = DefaultServings
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.Normalize()
}

// Normalize replaces nil slices so documents missing the arrays still
// serialize as [] rather than null.
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
}

// IsUncategorized reports whether c is one of the sentinel cuisines.
func IsUncategorized(c string) bool {
	return c == "" || c == CuisineUnknown || c == CuisineGlobal
}

// CategoryGroup is one cuisine and its recipes, newest first.
type CategoryGroup struct {
	Category string   `json:"category"`
	Recipes  []Recipe `json:"recipes"`
}

// GroupedPage is the response of the grouped listing.
type GroupedPage struct {
	Data              []CategoryGroup `json:"data"`
	HasMore           bool            `json:"hasMore"`
	TotalRecipesCount int64           `json:"totalRecipesCount"`
}

// CategoryCount is a cuisine with its number of recipes.
type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// CatalogStats summarizes the catalog by cuisine.
type CatalogStats struct {
	TotalRecipes int64           `json:"totalRecipes"`
	Cuisines     []CategoryCount `json:"cuisines"`
	Countries    []string        `json:"countries"`
}

// ScaledRecipe is a recipe with its ingredient lines rewritten for a serving
// count. The timers are read from the prep and cook texts and are nil when
// the text holds no duration.
type ScaledRecipe struct {
	Recipe
	BaseServings   int     `json:"baseServings"`
	ScaledServings int     `json:"scaledServings"`
	Ratio          float64 `json:"ratio"`
	PrepTimer      *Timer  `json:"prepTimer,omitempty"`
	CookTimer      *Timer  `json:"cookTimer,omitempty"`
}

// Timer is a countdown start value for the cooking view.
type Timer struct {
	Seconds int64  `json:"seconds"`
	Clock   string `json:"clock"`
}
