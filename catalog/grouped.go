package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"recipeportal/errs"
	"recipeportal/kitchen"
	"recipeportal/models"
)

// Defaults of the grouped listing query string.
const (
	DefaultGroupedPage  = 1
	DefaultGroupedLimit = 4
)

// GroupedQuery selects one page of categories.
type GroupedQuery struct {
	DietaryType string
	Page        int
	Limit       int
	// Cuisine, when set, is moved to the front of the category order so a deep
	// link to it lands on the first page.
	Cuisine string
}

// ListGrouped pages through the cuisines of the candidate set, limit categories
// per page, each with its recipes newest first.
func (s *Service) ListGrouped(ctx context.Context, q GroupedQuery) (models.GroupedPage, error) {
	if q.Page < 1 {
		return models.GroupedPage{}, errs.InvalidArgument("page must be a positive integer")
	}
	if q.Limit < 1 {
		return models.GroupedPage{}, errs.InvalidArgument("limit must be a positive integer")
	}
	f, err := FilterFor(q.DietaryType)
	if err != nil {
		return models.GroupedPage{}, err
	}

	categories, err := s.store.Categories(ctx, f)
	if err != nil {
		return models.GroupedPage{}, fmt.Errorf("catalog: distinct categories: %w", err)
	}
	SortCategories(categories)
	categories = promote(categories, q.Cuisine)

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return models.GroupedPage{}, fmt.Errorf("catalog: count recipes: %w", err)
	}

	lo, hi, hasMore := pageWindow(len(categories), q.Page, q.Limit)
	groups := make([]models.CategoryGroup, 0, hi-lo)
	for _, category := range categories[lo:hi] {
		recipes, err := s.store.FindInCategory(ctx, f, category)
		if err != nil {
			return models.GroupedPage{}, fmt.Errorf("catalog: recipes of %q: %w", category, err)
		}
		groups = append(groups, models.CategoryGroup{
			Category: category,
			Recipes:  normalized(recipes),
		})
	}

	return models.GroupedPage{
		Data:              groups,
		HasMore:           hasMore,
		TotalRecipesCount: total,
	}, nil
}

// SortCategories orders categories case-insensitively, ties by byte order.
// The order only depends on the set of names, so pages stay stable between calls.
func SortCategories(categories []string) {
	slices.SortFunc(categories, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// promote moves the category whose slug equals the slug of cuisine to the front.
func promote(categories []string, cuisine string) []string {
	target := kitchen.Slug(cuisine)
	if target == "" {
		return categories
	}
	for i, c := range categories {
		if kitchen.Slug(c) != target {
			continue
		}
		if i > 0 {
			copy(categories[1:i+1], categories[:i])
			categories[0] = c
		}
		break
	}
	return categories
}

// pageWindow returns the [lo, hi) slice bounds of page over n items and
// whether items remain after it. It never overflows for large page or limit.
func pageWindow(n, page, limit int) (lo, hi int, hasMore bool) {
	pages := n / limit
	if n%limit != 0 {
		pages++
	}
	if page > pages {
		return n, n, false
	}
	lo = (page - 1) * limit
	hi = n
	if n-lo > limit {
		hi = lo + limit
	}
	return lo, hi, hi < n
}
