// Package catalog answers the recipe queries of the API: plain and grouped
// listings, lookups, random picks, statistics and scaled views. Persistence is
// behind Store; the MongoDB implementation lives in package db.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipeportal/errs"
	"recipeportal/kitchen"
	"recipeportal/models"
	"recipeportal/mq"
)

// RandomSampleSize is how many recipes the random endpoint returns at most.
const RandomSampleSize = 5

// Filter restricts the candidate set of a query. An empty DietaryType means all recipes.
type Filter struct {
	DietaryType string
}

// Store is the document store the catalog reads from and writes to.
// Implementations return *errs.Error values.
type Store interface {
	Find(ctx context.Context, f Filter) ([]models.Recipe, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Recipe, error)
	Insert(ctx context.Context, r *models.Recipe) error
	// Categories returns the distinct effective categories of the candidate set, unordered.
	Categories(ctx context.Context, f Filter) ([]string, error)
	// FindInCategory returns the members of one category, newest first.
	FindInCategory(ctx context.Context, f Filter, category string) ([]models.Recipe, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Sample(ctx context.Context, n int) ([]models.Recipe, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

// StatsCache holds the last computed stats. Failures are logged, never returned to callers.
type StatsCache interface {
	Get(ctx context.Context) (models.CatalogStats, bool, error)
	Set(ctx context.Context, stats models.CatalogStats) error
}

type Service struct {
	store  Store
	events mq.Emitter
	cache  StatsCache
	now    func() time.Time
}

func NewService(store Store, events mq.Emitter) *Service {
	if events == nil {
		events = mq.Nop{}
	}
	return &Service{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// WithStatsCache makes Stats read through c.
func (s *Service) WithStatsCache(c StatsCache) *Service {
	s.cache = c
	return s
}

// FilterFor validates a dietary type query value. "" and "All" select every recipe.
func FilterFor(dietaryType string) (Filter, error) {
	switch {
	case dietaryType == "" || strings.EqualFold(dietaryType, models.DietaryAll):
		return Filter{}, nil
	case strings.EqualFold(dietaryType, models.DietaryVeg):
		return Filter{DietaryType: models.DietaryVeg}, nil
	case strings.EqualFold(dietaryType, models.DietaryNonVeg):
		return Filter{DietaryType: models.DietaryNonVeg}, nil
	}
	return Filter{}, errs.InvalidArgument("type must be one of All, Veg, Non-Veg")
}

// List returns every recipe of the candidate set, newest first.
func (s *Service) List(ctx context.Context, dietaryType string) ([]models.Recipe, error) {
	f, err := FilterFor(dietaryType)
	if err != nil {
		return nil, err
	}
	recipes, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("catalog: list recipes: %w", err)
	}
	return normalized(recipes), nil
}

// Get looks a recipe up by its hex id. Malformed ids are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (models.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Recipe{}, errs.NotFound("Recipe not found")
	}
	recipe, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("catalog: get recipe %s: %w", id, err)
	}
	recipe.Normalize()
	return recipe, nil
}

// Random returns up to RandomSampleSize recipes picked uniformly by the store.
func (s *Service) Random(ctx context.Context) ([]models.Recipe, error) {
	recipes, err := s.store.Sample(ctx, RandomSampleSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: sample recipes: %w", err)
	}
	return normalized(recipes), nil
}

// Scaled returns the recipe with its ingredient lines rewritten for servings.
func (s *Service) Scaled(ctx context.Context, id string, servings int) (models.ScaledRecipe, error) {
	if servings < 1 {
		return models.ScaledRecipe{}, errs.InvalidArgument("servings must be at least 1")
	}
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return models.ScaledRecipe{}, err
	}
	base := kitchen.ParseServings(recipe.Servings)
	ratio := kitchen.Ratio(servings, base)
	recipe.Ingredients = kitchen.ScaleAll(recipe.Ingredients, ratio)
	return models.ScaledRecipe{
		Recipe:         recipe,
		BaseServings:   base,
		ScaledServings: servings,
		Ratio:          ratio,
		PrepTimer:      timer(recipe.PrepTime),
		CookTimer:      timer(recipe.CookTime),
	}, nil
}

func timer(text string) *models.Timer {
	d := kitchen.ParseDuration(text)
	if d <= 0 {
		return nil
	}
	return &models.Timer{Seconds: int64(d / time.Second), Clock: kitchen.FormatClock(d)}
}

func normalized(recipes []models.Recipe) []models.Recipe {
	if recipes == nil {
		return []models.Recipe{}
	}
	for i := range recipes {
		recipes[i].Normalize()
	}
	return recipes
}
