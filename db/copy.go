package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipeportal/catalog"
)

const copyBatchSize = 500

// Batches splits items into consecutive slices of at most size elements.
func Batches[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

type CopyResult struct {
	RecipesDeleted int64
	RecipesCopied  int
	UsersCopied    int
	UsersSkipped   int
}

// Copy replaces the recipes of dst with those of src and adds the users of
// src that dst does not have yet. Recipes and users are copied concurrently.
func Copy(ctx context.Context, src, dst *Database, log *zap.Logger) (CopyResult, error) {
	var res CopyResult
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		from, to := NewRecipeStore(src.Recipes), NewRecipeStore(dst.Recipes)
		recipes, err := from.Find(ctx, catalog.Filter{})
		if err != nil {
			return fmt.Errorf("db: read source recipes: %w", err)
		}
		if res.RecipesDeleted, err = to.DeleteAll(ctx); err != nil {
			return err
		}
		for _, batch := range Batches(recipes, copyBatchSize) {
			n, err := to.InsertMany(ctx, batch)
			res.RecipesCopied += n
			if err != nil {
				return err
			}
		}
		log.Info("recipes copied", zap.Int("copied", res.RecipesCopied), zap.Int64("replaced", res.RecipesDeleted))
		return nil
	})

	grp.Go(func() error {
		from, to := NewUserStore(src.Users), NewUserStore(dst.Users)
		users, err := from.All(ctx)
		if err != nil {
			return fmt.Errorf("db: read source users: %w", err)
		}
		for _, batch := range Batches(users, copyBatchSize) {
			inserted, skipped, err := to.InsertMany(ctx, batch)
			res.UsersCopied += inserted
			res.UsersSkipped += skipped
			if err != nil {
				return err
			}
		}
		log.Info("users copied", zap.Int("copied", res.UsersCopied), zap.Int("skipped", res.UsersSkipped))
		return nil
	})

	if err := grp.Wait(); err != nil {
		return res, err
	}
	return res, nil
}
