package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"recipeportal/logger"
	"recipeportal/models"
)

// Stats summarizes the catalog: total recipes, per-cuisine counts (largest
// first) and the categorized cuisines in display order.
func (s *Service) Stats(ctx context.Context) (models.CatalogStats, error) {
	if s.cache == nil {
		return s.computeStats(ctx)
	}
	log := logger.FromContext(ctx)
	if stats, ok, err := s.cache.Get(ctx); err != nil {
		log.Warn("stats cache read failed", zap.Error(err))
	} else if ok {
		return stats, nil
	}
	stats, err := s.computeStats(ctx)
	if err != nil {
		return stats, err
	}
	if err := s.cache.Set(ctx, stats); err != nil {
		log.Warn("stats cache write failed", zap.Error(err))
	}
	return stats, nil
}

func (s *Service) computeStats(ctx context.Context) (models.CatalogStats, error) {
	total, err := s.store.Count(ctx, Filter{})
	if err != nil {
		return models.CatalogStats{}, fmt.Errorf("catalog: count recipes: %w", err)
	}
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return models.CatalogStats{}, fmt.Errorf("catalog: count categories: %w", err)
	}

	slices.SortFunc(counts, func(a, b models.CategoryCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})

	countries := make([]string, 0, len(counts))
	for _, c := range counts {
		if !models.IsUncategorized(c.Category) {
			countries = append(countries, c.Category)
		}
	}
	SortCategories(countries)

	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return models.CatalogStats{
		TotalRecipes: total,
		Cuisines:     counts,
		Countries:    countries,
	}, nil
}
